// Package resttimer is the countdown started between sets.
package resttimer

import (
	"sync"
	"time"
)

const (
	// DefaultDuration is used when Start is given a non-positive duration.
	DefaultDuration = 90 * time.Second
	// ExtendStep is the manual "+15s" adjustment.
	ExtendStep = 15 * time.Second
)

// Timer counts down in whole seconds. It keeps a deadline instead of a
// ticking goroutine: extending moves the deadline, so the one-second cadence
// anchored at Start is never reset.
type Timer struct {
	mu       sync.Mutex
	now      func() time.Time
	deadline time.Time
	running  bool
}

// New returns an idle timer. A nil now uses time.Now.
func New(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Start resets the countdown to d and starts it.
func (t *Timer) Start(d time.Duration) {
	if d <= 0 {
		d = DefaultDuration
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline = t.now().Add(d)
	t.running = true
}

// StartSeconds is Start for a whole number of seconds.
func (t *Timer) StartSeconds(seconds int) {
	t.Start(time.Duration(seconds) * time.Second)
}

// Extend adds d to a running countdown. An idle timer starts a fresh
// countdown of d.
func (t *Timer) Extend(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if !t.runningLocked(now) {
		t.deadline = now.Add(d)
		t.running = d > 0
		return
	}
	t.deadline = t.deadline.Add(d)
}

// Stop clamps the remaining time to zero.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.deadline = time.Time{}
}

// Remaining returns the whole seconds left, rounded up. A countdown that
// reaches zero stops itself.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if !t.runningLocked(now) {
		return 0
	}
	left := t.deadline.Sub(now)
	return int((left + time.Second - 1) / time.Second)
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runningLocked(t.now())
}

func (t *Timer) runningLocked(now time.Time) bool {
	if t.running && !now.Before(t.deadline) {
		t.running = false
	}
	return t.running
}
