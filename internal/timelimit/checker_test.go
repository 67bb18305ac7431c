package timelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saildesk/raceops/internal/testutil"
)

func TestCheckerRunsImmediateCheck(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 6, 6, 10, 30, 0, 0, time.UTC))

	var calls atomic.Int32
	c := NewChecker("r1", time.Hour, clock, func(_ context.Context, now time.Time) (bool, error) {
		calls.Add(1)
		assert.Equal(t, clock.Now(), now)
		return true, nil
	}, nil)

	c.Start(context.Background())
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("checker did not stop after done=true")
	}
	assert.Equal(t, int32(1), calls.Load(), "done on the immediate check, before any tick")
}

func TestCheckerStopsOnCompletion(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 6, 6, 10, 30, 0, 0, time.UTC))
	deadline := clock.Now().Add(10 * time.Minute)

	var calls atomic.Int32
	c := NewChecker("r1", time.Millisecond, clock, func(_ context.Context, now time.Time) (bool, error) {
		calls.Add(1)
		if !now.Before(deadline) {
			return true, nil
		}
		// Each poll moves the fake clock toward the deadline.
		clock.Advance(5 * time.Minute)
		return false, nil
	}, nil)

	c.Start(context.Background())
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("checker did not reach the deadline")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestCheckerStop(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 6, 6, 10, 30, 0, 0, time.UTC))

	c := NewChecker("r1", time.Hour, clock, func(context.Context, time.Time) (bool, error) {
		return false, nil
	}, nil)

	c.Start(context.Background())
	c.Stop()

	select {
	case <-c.Done():
	default:
		t.Fatal("Done channel not closed after Stop")
	}

	// Stop is safe to repeat.
	c.Stop()
}

func TestCheckerStopBeforeStart(t *testing.T) {
	c := NewChecker("r1", time.Second, nil, nil, nil)
	c.Stop()
	assert.Nil(t, c.Done())
}

func TestCheckerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewChecker("r1", time.Hour, nil, func(context.Context, time.Time) (bool, error) {
		return false, nil
	}, nil)

	c.Start(ctx)
	cancel()

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("checker did not exit on context cancellation")
	}
}

func TestCheckerDefaults(t *testing.T) {
	c := NewChecker("r1", 0, nil, nil, nil)
	require.NotNil(t, c)
	assert.Equal(t, DefaultCheckInterval, c.interval)
	assert.IsType(t, SystemClock{}, c.clock)
}
