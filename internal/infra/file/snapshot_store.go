// Package file persists one JSON file per session under a local directory.
// This is the default backend: local-only, single-device, no daemon.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/session"
)

// SnapshotStore writes <sessionID>.json files into dir. Unreadable or
// malformed entries are skipped on load rather than failing the scan, so one
// corrupt record never blocks resume.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

func (s *SnapshotStore) Save(_ context.Context, snap session.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	// Write-then-rename keeps a crash from leaving a truncated record.
	tmp, err := os.CreateTemp(s.dir, "snapshot-*.tmp")
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &domain.StorageError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &domain.StorageError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path(snap.SessionID)); err != nil {
		os.Remove(tmp.Name())
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *SnapshotStore) LoadMostRecent(_ context.Context) (session.Snapshot, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Snapshot{}, false, nil
		}
		return session.Snapshot{}, false, &domain.StorageError{Op: "load", Err: err}
	}

	var latest session.Snapshot
	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
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
	return latest, found, nil
}

func (s *SnapshotStore) Delete(_ context.Context, sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (s *SnapshotStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}
