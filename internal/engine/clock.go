package engine

import "time"

// Clock is the engine's injected time source. Production code uses
// SystemClock; tests inject testutil.FakeClock so every deadline and
// signal time is deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }
