package control

import "time"

// Rate limits for input events
const (
	PointerInterval = 16 * time.Millisecond
	ResizeDelay     = 250 * time.Millisecond
)

// Throttle lets one event through per interval. The first event always passes.
type Throttle struct {
	interval time.Duration
	last     time.Time
	started  bool
}

// NewThrottle creates a throttle that passes one event per interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Allow reports whether an event at now may pass, and if so starts a new interval.
func (t *Throttle) Allow(now time.Time) bool {
	if t.started && now.Sub(t.last) < t.interval {
		return false
	}
	t.started = true
	t.last = now
	return true
}

// Debounce collapses a burst of triggers into one, fired delay after the last
// trigger. It has no timer of its own; the owner polls Fire.
type Debounce struct {
	delay    time.Duration
	deadline time.Time
	pending  bool
}

// NewDebounce creates a debounce that fires delay after the last trigger.
func NewDebounce(delay time.Duration) *Debounce {
	return &Debounce{delay: delay}
}

// Trigger records an event at now, pushing the deadline back.
func (d *Debounce) Trigger(now time.Time) {
	d.deadline = now.Add(d.delay)
	d.pending = true
}

// Fire reports whether the deadline has passed since the last trigger. It
// returns true once per burst.
func (d *Debounce) Fire(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a trigger is waiting to fire.
func (d *Debounce) Pending() bool { return d.pending }

// Cancel drops a pending trigger.
func (d *Debounce) Cancel() { d.pending = false }
