package detection

import (
	"sync"
	"time"
)

// DefaultDebounceDelay coalesces bursts of edits into one rescan
const DefaultDebounceDelay = 500 * time.Millisecond

// Debouncer runs the latest function triggered for a key once the key has been
// quiet for the delay. Triggering again before the delay elapses restarts it.
// Functions run on timer goroutines.
type Debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewDebouncer creates a Debouncer; a non-positive delay uses DefaultDebounceDelay
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger schedules fn for key, cancelling anything pending for the same key
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timers[key] == timer
		if current {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})
	d.timers[key] = timer
}

// Cancel drops a pending call for key
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Pending returns the number of keys waiting to fire
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending call; later triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	d.closed = true
}
