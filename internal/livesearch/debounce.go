// Package livesearch runs search-as-you-type: input is debounced, and only the
// result of the most recent settled request is ever applied.
package livesearch

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWindow is the quiet period after the last keystroke before searching.
const DefaultWindow = 450 * time.Millisecond

// Debouncer coalesces rapid calls per key; only the last fn within the window runs.
type Debouncer struct {
	window time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer creates a debouncer. window <= 0 uses DefaultWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, timers: make(map[string]*time.Timer)}
}

// Trigger schedules fn for key, replacing any pending call for the same key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel drops the pending call for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Stop drops every pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

// Sequencer hands out monotonically increasing tickets. A ticket is current
// until a newer one is issued.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new ticket, making every earlier ticket stale.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Current reports whether ticket is the most recently issued one.
func (s *Sequencer) Current(ticket uint64) bool {
	return s.latest.Load() == ticket
}
