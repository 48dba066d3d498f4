// Package app wires the session state machine to a snapshot store: debounced
// auto-save after each change, a synchronous save on quit, and recency plus
// staleness filtering when offering a session for resume.
package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/session"
)

// SnapshotStore abstracts the durable session record (file dir, redis,
// sqlite, memory). It is a dumb durable map: staleness and completion
// filtering happen here in the Runner, not in the store.
type SnapshotStore interface {
	// Save upserts by session id and must not fail silently.
	Save(ctx context.Context, snap session.Snapshot) error
	// LoadMostRecent returns the snapshot with the greatest timestamp, or
	// ok=false when the store is empty.
	LoadMostRecent(ctx context.Context) (session.Snapshot, bool, error)
	// Delete removes one record; an absent key is not an error.
	Delete(ctx context.Context, sessionID string) error
}

const (
	// DefaultStaleAfter is how old a snapshot may be and still be offered
	// for resume.
	DefaultStaleAfter = 7 * 24 * time.Hour
	// DefaultDebounce coalesces a burst of answer/navigation updates into a
	// single save shortly after the last change.
	DefaultDebounce = time.Second
)

// Runner owns one live session and serializes all access to it. Session
// mutation is single-threaded from the caller's point of view; the mutex
// exists because the debounced save timer fires on its own goroutine.
type Runner struct {
	mu         sync.Mutex
	state      *session.State
	store      SnapshotStore
	saver      *autosaver
	log        *zap.Logger
	staleAfter time.Duration
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithDebounce overrides the auto-save quiet period.
func WithDebounce(d time.Duration) Option {
	return func(r *Runner) { r.saver.delay = d }
}

// WithStaleAfter overrides the resume staleness cutoff.
func WithStaleAfter(d time.Duration) Option {
	return func(r *Runner) { r.staleAfter = d }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(store SnapshotStore, log *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		state:      session.New(),
		store:      store,
		log:        log,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	r.saver = newAutosaver(DefaultDebounce, r.persist)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State exposes the live session for read-only rendering.
func (r *Runner) State() *session.State {
	return r.state
}

// Load installs a parsed document, replacing any prior in-memory attempt.
func (r *Runner) Load(doc domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saver.cancel()
	r.state.Load(doc)
}

// Start fixes the active order and begins the attempt.
func (r *Runner) Start(settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.Start(settings); err != nil {
		return err
	}
	r.saver.schedule()
	return nil
}

// Answer records an answer and schedules an auto-save. Type mismatches are
// surfaced to the caller and never stored.
func (r *Runner) Answer(questionID string, value domain.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.Answer(questionID, value); err != nil {
		return err
	}
	r.saver.schedule()
	return nil
}

// Advance moves forward; domain.ErrUnanswered means the caller should warn
// and stay put.
func (r *Runner) Advance() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.Advance(); err != nil {
		return err
	}
	r.saver.schedule()
	return nil
}

// Retreat moves backward.
func (r *Runner) Retreat() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.Retreat(); err != nil {
		return err
	}
	r.saver.schedule()
	return nil
}

// Finish moves to results; the confirm callback decides when unanswered
// questions remain. The final snapshot is saved synchronously so a completed
// attempt is never offered for resume.
func (r *Runner) Finish(ctx context.Context, confirm func(unanswered int) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	done, err := r.state.Finish(confirm)
	if err != nil || !done {
		return done, err
	}
	r.saver.cancel()
	r.saveLocked(ctx)
	return true, nil
}

// Quit snapshots synchronously and returns to setup. The save blocks the
// transition; a failure is logged, not fatal, and the user can still resume
// from the last successful auto-save.
func (r *Runner) Quit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, err := r.state.Quit()
	if err != nil {
		return err
	}
	r.saver.cancel()
	if err := r.store.Save(ctx, snap); err != nil {
		r.log.Warn("quit save failed, progress may not be durable", zap.Error(err))
	} else {
		r.state.LastSavedAt = snap.Timestamp
	}
	return nil
}

// Restart discards a finished attempt and deletes its durable record.
func (r *Runner) Restart(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.state.SessionID
	if err := r.state.Restart(); err != nil {
		return err
	}
	r.saver.cancel()
	if id != "" {
		if err := r.store.Delete(ctx, id); err != nil {
			r.log.Warn("delete session record failed", zap.String("sessionId", id), zap.Error(err))
		}
	}
	return nil
}

// ResumeLatest loads the most recent snapshot, filtered for staleness and
// completion, and reconstructs the session against doc. Store failures
// degrade to "nothing to resume".
func (r *Runner) ResumeLatest(ctx context.Context, doc domain.Document) (session.Snapshot, bool) {
	snap, ok := r.peekResumable(ctx)
	if !ok {
		return session.Snapshot{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Resume(snap, doc)
	return snap, true
}

// PeekResumable reports whether a resumable snapshot exists without touching
// the live session, so a UI can ask before discarding anything.
func (r *Runner) PeekResumable(ctx context.Context) (session.Snapshot, bool) {
	return r.peekResumable(ctx)
}

func (r *Runner) peekResumable(ctx context.Context) (session.Snapshot, bool) {
	snap, ok, err := r.store.LoadMostRecent(ctx)
	if err != nil {
		r.log.Warn("load most recent snapshot failed", zap.Error(err))
		return session.Snapshot{}, false
	}
	if !ok || snap.Completed {
		return session.Snapshot{}, false
	}
	if r.now().Sub(snap.Timestamp) > r.staleAfter {
		return session.Snapshot{}, false
	}
	return snap, true
}

// Close flushes any pending debounced save.
func (r *Runner) Close(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saver.cancel() {
		r.saveLocked(ctx)
	}
}

// persist is the debounced save target; it runs on the timer goroutine.
func (r *Runner) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLocked(ctx)
}

func (r *Runner) saveLocked(ctx context.Context) {
	if r.state.SessionID == "" {
		return
	}
	// A timer callback already in flight when Load replaced the session must
	// not persist the not-yet-started state as resumable.
	if r.state.Phase != session.PhaseActive && r.state.Phase != session.PhaseResults {
		return
	}
	snap := r.state.Snapshot()
	if err := r.store.Save(ctx, snap); err != nil {
		// Auto-save failures never interrupt quiz-taking.
		r.log.Warn("auto-save failed, progress not yet durable", zap.Error(err))
		return
	}
	r.state.LastSavedAt = snap.Timestamp
}
