package memory

import (
	"context"
	"testing"
	"time"

	"quiz-runner/internal/session"
)

func snapshotAt(id string, ts time.Time) session.Snapshot {
	return session.Snapshot{SessionID: id, Timestamp: ts}
}

func TestSnapshotStoreRecency(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	if _, ok, err := store.LoadMostRecent(ctx); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	base := time.Now()
	if err := store.Save(ctx, snapshotAt("a", base)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, snapshotAt("b", base.Add(time.Minute))); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, ok, err := store.LoadMostRecent(ctx)
	if err != nil || !ok || snap.SessionID != "b" {
		t.Fatalf("expected most recent b, got %+v ok=%v err=%v", snap, ok, err)
	}

	// Upsert moves a back to the front.
	if err := store.Save(ctx, snapshotAt("a", base.Add(2*time.Minute))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap, _, _ := store.LoadMostRecent(ctx); snap.SessionID != "a" {
		t.Fatalf("expected upserted a, got %+v", snap)
	}
}

func TestSnapshotStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting an absent key must not fail: %v", err)
	}
	if err := store.Save(ctx, snapshotAt("a", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.LoadMostRecent(ctx); ok {
		t.Fatalf("expected empty store after delete")
	}
}
