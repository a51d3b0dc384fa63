package storage

import (
	"context"
	"errors"
	"sync"

	"neuromap/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	snapshots   map[string]model.DatasetSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.snapshots = make(map[string]model.DatasetSnapshot)
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot model.DatasetSnapshot) error {
	if snapshot.ID == "" {
		return errors.New("snapshot id is required")
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.snapshots[snapshot.ID] = snapshot.Clone()
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (model.DatasetSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[id]
	if !ok {
		return model.DatasetSnapshot{}, false, nil
	}
	return snapshot.Clone(), true, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context) ([]model.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]model.SnapshotInfo, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		infos = append(infos, snapshot.Info())
	}
	sortNewestFirst(infos)
	return infos, nil
}

func (s *MemoryStore) DeleteSnapshot(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return false, nil
	}
	delete(s.snapshots, id)
	return true, nil
}
