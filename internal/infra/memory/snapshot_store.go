// Package memory holds in-process store implementations, useful for tests
// and for running without any durable backend.
package memory

import (
	"context"
	"sync"

	"quiz-runner/internal/session"
)

// SnapshotStore is an in-memory implementation of app.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]session.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]session.Snapshot)}
}

func (s *SnapshotStore) Save(_ context.Context, snap session.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.SessionID] = snap
	return nil
}

func (s *SnapshotStore) LoadMostRecent(_ context.Context) (session.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest session.Snapshot
	found := false
	for _, snap := range s.snapshots {
		if !found || snap.Timestamp.After(latest.Timestamp) {
			latest = snap
			found = true
		}
	}
	return latest, found, nil
}

func (s *SnapshotStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

// Len is test-only.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
