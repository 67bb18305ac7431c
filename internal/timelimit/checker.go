package timelimit

import (
	"context"
	"log/slog"
	"time"
)

// Clock is the injected time source for deadline checks. Production code
// uses SystemClock; tests inject testutil.FakeClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// DefaultCheckInterval is how often a Checker polls when no interval is
// configured. Checks are level-triggered, so the interval bounds only the
// detection latency, never correctness.
const DefaultCheckInterval = 5 * time.Second

// CheckFunc performs one deadline check for one race at the given instant.
// It returns done=true when the race's enforcement is finished and the
// checker should stop on its own.
type CheckFunc func(ctx context.Context, now time.Time) (done bool, err error)

// Checker polls one race's deadlines at a fixed short interval. Each race
// gets its own Checker so enforcement can be stopped per race (e.g., on
// abandonment) without affecting other races.
type Checker struct {
	raceID   string
	interval time.Duration
	clock    Clock
	check    CheckFunc
	log      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewChecker builds a checker for one race. interval <= 0 selects
// DefaultCheckInterval; a nil clock selects SystemClock.
func NewChecker(raceID string, interval time.Duration, clock Clock, check CheckFunc, log *slog.Logger) *Checker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		raceID:   raceID,
		interval: interval,
		clock:    clock,
		check:    check,
		log:      log,
	}
}

// Start launches the poll loop in its own goroutine. The loop runs one
// immediate check, then one per tick, and exits when the check reports
// done, the check returns an error, Stop is called, or ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			done, err := c.check(ctx, c.clock.Now())
			if err != nil {
				c.log.Error("time limit check failed", "race", c.raceID, "error", err)
				return
			}
			if done {
				c.log.Debug("time limit enforcement complete", "race", c.raceID)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Done returns a channel closed when the poll loop has exited, whether by
// completion, error, or cancellation. Returns nil before Start.
func (c *Checker) Done() <-chan struct{} {
	return c.done
}

// Stop cancels the poll loop and waits for it to exit. Safe to call more
// than once and before Start.
func (c *Checker) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
}
