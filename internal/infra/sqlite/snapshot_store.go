// Package sqlite persists session snapshots in an embedded SQLite database
// via bun, for setups that want one durable file instead of a directory.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	"quiz-runner/internal/domain"
	sqlitemigrations "quiz-runner/internal/infra/sqlite/migrations"
	"quiz-runner/internal/session"
)

// SnapshotStore is a SQLite implementation of app.SnapshotStore.
type SnapshotStore struct {
	db *bun.DB
}

// timestampLayout is fixed-width so that ORDER BY on the text column sorts
// chronologically. RFC3339Nano trims trailing fractional zeros and would not.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*SnapshotStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrator := migrate.NewMigrator(db, sqlitemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &SnapshotStore{db: db}, nil
}

func (s *SnapshotStore) Close() error { return s.db.Close() }

func (s *SnapshotStore) Save(ctx context.Context, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, data, completed, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET data=excluded.data, completed=excluded.completed, updated_at=excluded.updated_at`,
		snap.SessionID, string(data), snap.Completed, snap.Timestamp.UTC().Format(timestampLayout))
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *SnapshotStore) LoadMostRecent(ctx context.Context) (session.Snapshot, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots ORDER BY updated_at DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, &domain.StorageError{Op: "load", Err: err}
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return session.Snapshot{}, false, &domain.StorageError{Op: "load", Err: err}
	}
	return snap, true, nil
}

func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, sessionID); err != nil {
		return &domain.StorageError{Op: "delete", Err: err}
	}
	return nil
}
