package memory

import (
	"context"
	"sync"

	"evaluation-console/internal/domain"
)

// SnapshotStore is an in-memory result archive (tests, no-database runs).
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.ResultSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]domain.ResultSnapshot)}
}

func (s *SnapshotStore) SaveSnapshot(_ context.Context, kind string, snap domain.ResultSnapshot) error {
	snap.Records = append([]domain.ResultRecord(nil), snap.Records...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[kind+"/"+snap.Subject] = snap
	return nil
}

func (s *SnapshotStore) LoadSnapshot(_ context.Context, kind, subject string) (domain.ResultSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[kind+"/"+subject]
	if !ok {
		return domain.ResultSnapshot{}, domain.ErrSnapshotNotFound
	}
	snap.Records = append([]domain.ResultRecord(nil), snap.Records...)
	return snap, nil
}
