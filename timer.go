package main

import (
	"sync"
	"time"
)

// CancelableTimer is the subset of *time.Timer the end timer needs.
type CancelableTimer interface {
	Stop() bool
}

// Clock abstracts wall time and timer scheduling so pause/resume
// accounting can be tested without real waits.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) CancelableTimer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) CancelableTimer {
	return time.AfterFunc(d, f)
}

// endTimer schedules the single end-of-match event. It is the only
// long-lived timer in the process; the countdown grace window and the
// slow debuff are derived lazily from stored timestamps instead.
//
// Each Arm bumps a generation counter. The fired callback receives the
// generation it was armed with, and the session re-checks
// StillCurrent under its own lock, so a fire that raced with a
// pause/stop is discarded instead of ending the wrong round.
type endTimer struct {
	clock Clock
	fire  func(gen uint64)

	mu        sync.Mutex
	timer     CancelableTimer
	gen       uint64
	remaining time.Duration
	armedAt   time.Time
}

func newEndTimer(clock Clock, fire func(gen uint64)) *endTimer {
	return &endTimer{clock: clock, fire: fire}
}

// Arm schedules the fire callback d from now, replacing any pending one.
func (t *endTimer) Arm(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.remaining = d
	t.armedAt = t.clock.Now()
	t.timer = t.clock.AfterFunc(d, func() {
		t.fire(gen)
	})
}

// Disarm cancels the pending event and returns the time that was left
// on it, floored at zero. Disarming an idle timer returns zero.
func (t *endTimer) Disarm() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return 0
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	left := t.remaining - t.clock.Now().Sub(t.armedAt)
	if left < 0 {
		left = 0
	}
	t.remaining = 0
	return left
}

// Reschedule rearms with the remainder retained at the moment of pause.
func (t *endTimer) Reschedule(remaining time.Duration) {
	t.Arm(remaining)
}

// StillCurrent reports whether gen is the generation of the last Arm.
func (t *endTimer) StillCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}

func (t *endTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
