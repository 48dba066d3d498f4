// Package redis persists session snapshots as JSON values under a key
// prefix, with a TTL acting as a hard staleness bound on top of the softer
// 7-day resume filter in the app layer.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/session"
)

const keyPrefix = "quiz:snapshot:"

// SnapshotStore is a redis implementation of app.SnapshotStore.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) Save(ctx context.Context, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	if err := s.client.Set(ctx, keyPrefix+snap.SessionID, data, s.ttl).Err(); err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}

// LoadMostRecent scans the prefix and picks the greatest embedded timestamp.
// Session counts are tiny (one device), so a scan is fine.
func (s *SnapshotStore) LoadMostRecent(ctx context.Context) (session.Snapshot, bool, error) {
	var latest session.Snapshot
	found := false

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var snap session.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil || snap.SessionID == "" {
			continue
		}
		if !found || snap.Timestamp.After(latest.Timestamp) {
			latest = snap
			found = true
		}
	}
	if err := iter.Err(); err != nil {
		return session.Snapshot{}, false, &domain.StorageError{Op: "load", Err: err}
	}
	return latest, found, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return &domain.StorageError{Op: "delete", Err: err}
	}
	return nil
}
