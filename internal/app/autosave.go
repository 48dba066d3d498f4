package app

import (
	"sync"
	"time"
)

// autosaver debounces saves: each state change re-arms a single timer, so a
// burst of updates collapses into one save after a quiet period. At most one
// save is ever pending; a new change replaces the pending one rather than
// queuing a second.
type autosaver struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

func newAutosaver(delay time.Duration, fn func()) *autosaver {
	return &autosaver{delay: delay, fn: fn}
}

// schedule arms (or re-arms) the pending save.
func (a *autosaver) schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		a.timer = nil
		a.mu.Unlock()
		a.fn()
	})
}

// cancel drops the pending save if any, reporting whether one was pending.
func (a *autosaver) cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer == nil {
		return false
	}
	stopped := a.timer.Stop()
	a.timer = nil
	return stopped
}
