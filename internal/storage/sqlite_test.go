//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStoreSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "neuromap.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	createdAt := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	if err := store.SaveSnapshot(ctx, testSnapshot("s1", createdAt, 4)); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := store.SaveSnapshot(ctx, testSnapshot("s2", createdAt.Add(time.Minute), 1)); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	loaded, ok, err := store.GetSnapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !ok {
		t.Fatal("expected snapshot s1")
	}
	if len(loaded.Samples) != 4 || loaded.Samples[3].Output[0] != 6 {
		t.Fatalf("unexpected snapshot loaded: %+v", loaded)
	}

	infos, err := store.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(infos) != 2 || infos[0].ID != "s2" || !infos[1].CreatedAt.Equal(createdAt) || !infos[1].Normalized {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	deleted, err := store.DeleteSnapshot(ctx, "s1")
	if err != nil || !deleted {
		t.Fatalf("delete snapshot: deleted=%t err=%v", deleted, err)
	}
	_, ok, err = store.GetSnapshot(ctx, "s1")
	if err != nil || ok {
		t.Fatalf("expected deleted snapshot to be missing, ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "neuromap.db"))
	if _, _, err := store.GetSnapshot(context.Background(), "s1"); err == nil {
		t.Fatal("expected error before init")
	}
}
