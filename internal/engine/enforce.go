package engine

import (
	"context"
	"time"

	"github.com/saildesk/raceops/internal/race"
	"github.com/saildesk/raceops/internal/timelimit"
)

// CheckRace runs one level-triggered deadline check for a race at the
// given instant and applies auto-disposition when a deadline has lapsed
// and enforcement is enabled for the race.
//
// Returns done=true when nothing further can happen for this race: the
// disposition has been applied, or a deadline lapsed with enforcement
// disabled (advisory mode computes and exposes, never mutates).
func (o *Ops) CheckRace(ctx context.Context, raceID string, now time.Time) (done bool, err error) {
	l := o.raceLock(raceID)
	l.Lock()
	defer l.Unlock()

	tl, err := o.store.TimeLimit(ctx, raceID)
	if err != nil {
		return false, err
	}

	before := tl.Status
	expired := timelimit.Check(&tl, now)
	if tl.Status != before {
		o.log.Info("time limit lapsed", "race", raceID, "from", string(before), "to", string(tl.Status))
	}

	if !expired {
		if tl.Status != before {
			if err := o.store.SaveTimeLimit(ctx, tl); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	if !tl.Enforce {
		// Advisory: expose the lapsed state, touch no results.
		if err := o.store.SaveTimeLimit(ctx, tl); err != nil {
			return false, err
		}
		return true, nil
	}

	if tl.Status == race.LimitCompleted {
		// Disposition already applied; re-running is a no-op.
		return true, nil
	}

	gen := o.bumpGen(raceID)
	results, err := o.store.Results(ctx, raceID)
	if err != nil {
		return false, err
	}

	affected := timelimit.AutoDisposition(&tl, results)
	if len(affected) > 0 {
		changed := make([]race.RaceResult, 0, len(affected))
		for _, i := range affected {
			changed = append(changed, results[i])
		}
		if err := o.store.SaveResults(ctx, changed); err != nil {
			return false, err
		}
	}
	if err := o.store.SaveTimeLimit(ctx, tl); err != nil {
		return false, err
	}

	if err := o.audit(ctx, race.EventDisposition, raceID, map[string]any{
		"affected": len(affected),
		"status":   string(tl.Status),
	}); err != nil {
		return false, err
	}
	o.log.Info("auto disposition applied", "race", raceID, "affected", len(affected))

	if err := o.recomputeLocked(ctx, raceID, gen); err != nil && !IsStale(err) {
		return false, err
	}
	return true, nil
}

// TimeRemaining exposes the time left to the governing deadline for
// display ("3 minutes remaining"). ok is false when no deadline governs
// the race's current state.
func (o *Ops) TimeRemaining(ctx context.Context, raceID string) (time.Duration, bool, error) {
	tl, err := o.store.TimeLimit(ctx, raceID)
	if err != nil {
		return 0, false, err
	}
	remaining, ok := timelimit.Remaining(&tl, o.clock.Now())
	return remaining, ok, nil
}

// StartChecker launches the periodic deadline checker for one race. A
// second call for the same race replaces the previous checker.
func (o *Ops) StartChecker(ctx context.Context, raceID string) error {
	interval, err := o.cfg.Limits.Interval()
	if err != nil {
		return err
	}

	checker := timelimit.NewChecker(raceID, interval, o.clock, func(ctx context.Context, now time.Time) (bool, error) {
		return o.CheckRace(ctx, raceID, now)
	}, o.log)

	o.mu.Lock()
	old := o.checkers[raceID]
	o.checkers[raceID] = checker
	o.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	checker.Start(ctx)
	return nil
}

// CheckerDone returns the running checker's completion channel, or nil
// when no checker is running for the race.
func (o *Ops) CheckerDone(raceID string) <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	if c := o.checkers[raceID]; c != nil {
		return c.Done()
	}
	return nil
}

// StopChecker stops one race's checker without affecting other races.
// A no-op when no checker is running.
func (o *Ops) StopChecker(raceID string) {
	o.mu.Lock()
	checker := o.checkers[raceID]
	delete(o.checkers, raceID)
	o.mu.Unlock()
	if checker != nil {
		checker.Stop()
	}
}

// StopAllCheckers stops every running checker. Called on shutdown.
func (o *Ops) StopAllCheckers() {
	o.mu.Lock()
	checkers := make([]*timelimit.Checker, 0, len(o.checkers))
	for id, c := range o.checkers {
		checkers = append(checkers, c)
		delete(o.checkers, id)
	}
	o.mu.Unlock()
	for _, c := range checkers {
		c.Stop()
	}
}
