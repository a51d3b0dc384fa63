package storage

import (
	"context"

	"neuromap/internal/model"
)

// Store defines persistence operations for dataset snapshots.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snapshot model.DatasetSnapshot) error
	GetSnapshot(ctx context.Context, id string) (model.DatasetSnapshot, bool, error)
	// ListSnapshots returns snapshot summaries, newest first.
	ListSnapshots(ctx context.Context) ([]model.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, id string) (bool, error)
}
