// Package timer reads a clock at nanosecond resolution and measures
// intervals. All reads go through a quartz.Clock, so tests can drive time
// with quartz.NewMock.
package timer

import (
	"time"

	"github.com/coder/quartz"
)

// Timer reads time from a clock.
type Timer struct {
	clock quartz.Clock
}

// New returns a Timer reading clock; nil selects the real clock.
func New(clock quartz.Clock) *Timer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Timer{clock: clock}
}

// Now returns the current time.
func (t *Timer) Now() time.Time {
	return t.clock.Now()
}

// NanosSinceEpoch returns the Unix time in nanoseconds.
func (t *Timer) NanosSinceEpoch() int64 {
	return t.clock.Now().UnixNano()
}

// MicrosSinceEpoch returns the Unix time in microseconds.
func (t *Timer) MicrosSinceEpoch() int64 {
	return t.clock.Now().UnixMicro()
}

// Stopwatch measures time from the moment it was started.
type Stopwatch struct {
	clock quartz.Clock
	start time.Time
}

// Start returns a running Stopwatch.
func (t *Timer) Start() Stopwatch {
	return Stopwatch{clock: t.clock, start: t.clock.Now()}
}

// Elapsed returns the time since the Stopwatch was started.
func (s Stopwatch) Elapsed() time.Duration {
	return s.clock.Since(s.start)
}

// Started returns the start time.
func (s Stopwatch) Started() time.Time {
	return s.start
}

// Scoped starts measuring and returns a function that stores the elapsed
// time in *dst. Intended for defer:
//
//	var d time.Duration
//	func() {
//	    defer t.Scoped(&d)()
//	    work()
//	}()
func (t *Timer) Scoped(dst *time.Duration) func() {
	sw := t.Start()
	return func() {
		if dst != nil {
			*dst = sw.Elapsed()
		}
	}
}

// Calibrate estimates the cost of one clock read by timing samples
// consecutive reads. Subtract it from very short measurements.
func (t *Timer) Calibrate(samples int) time.Duration {
	if samples <= 0 {
		return 0
	}

	start := t.clock.Now()
	for range samples {
		_ = t.clock.Now()
	}
	return t.clock.Since(start) / time.Duration(samples)
}
