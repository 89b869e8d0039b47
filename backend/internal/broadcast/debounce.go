package broadcast

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into one trailing-edge call:
// each Schedule replaces the pending function and restarts the window, so
// only the last function scheduled within a quiet period runs.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule arms fn to run after the debounce window, discarding any
// previously pending function. A zero window runs fn immediately on the
// caller's goroutine.
func (d *Debouncer) Schedule(fn func()) {
	if d.window <= 0 {
		fn()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// CancelPending drops the pending function, if any.
func (d *Debouncer) CancelPending() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
