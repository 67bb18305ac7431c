package timelimit

import (
	"time"

	"github.com/saildesk/raceops/internal/race"
)

// Recompute derives the three deadlines from the limit configuration and
// the recorded timestamps. It is called on every write to StartTime or
// FirstFinishTime and is idempotent: deadlines are pure functions of their
// inputs, never accumulated.
//
// A nil limit leaves the corresponding deadline nil ("no limit").
func Recompute(tl *race.TimeLimit) {
	tl.RaceDeadline = deadline(tl.StartTime, tl.RaceLimit)
	tl.FirstMarkDeadline = deadline(tl.StartTime, tl.FirstMarkLimit)
	tl.FinishingDeadline = deadline(tl.FirstFinishTime, tl.FinishingWindow)
}

func deadline(from *time.Time, limit *time.Duration) *time.Time {
	if from == nil || limit == nil {
		return nil
	}
	d := from.Add(*limit)
	return &d
}

// SetStart records the race's actual start, moves the machine to racing,
// and re-derives the deadlines.
func SetStart(tl *race.TimeLimit, start time.Time) {
	tl.StartTime = &start
	if tl.Status == race.LimitPending {
		tl.Status = race.LimitRacing
	}
	Recompute(tl)
}

// SetFirstFinish records the first boat's finish, which both clears the
// race-time deadline condition and opens the finishing window.
func SetFirstFinish(tl *race.TimeLimit, finish time.Time) {
	if tl.FirstFinishTime != nil {
		return // only the first finish opens the window
	}
	tl.FirstFinishTime = &finish
	if tl.Status == race.LimitRacing {
		tl.Status = race.LimitFirstFinished
	}
	Recompute(tl)
}

// Check advances the state machine for the given instant and reports
// whether a deadline lapse occurred that calls for disposition.
//
// The comparison is level-triggered (now >= deadline), never an
// edge-triggered timer fire. Check performs no result mutation itself;
// the caller applies AutoDisposition when expired is true and enforcement
// is enabled.
func Check(tl *race.TimeLimit, now time.Time) (expired bool) {
	switch tl.Status {
	case race.LimitRacing:
		if tl.RaceDeadline != nil && !now.Before(*tl.RaceDeadline) {
			// No boat finished inside the race time limit.
			tl.Status = race.LimitTimeExpired
			return true
		}
	case race.LimitFirstFinished:
		if tl.FinishingDeadline != nil && !now.Before(*tl.FinishingDeadline) {
			tl.Status = race.LimitWindowExpired
			return true
		}
	case race.LimitTimeExpired, race.LimitWindowExpired:
		// Already lapsed; disposition may still be outstanding.
		return true
	case race.LimitCompleted:
		// Disposition applied; nothing further can happen.
		return true
	}
	return false
}

// Remaining returns the time left until the currently-governing deadline:
// the race deadline while racing, the finishing deadline once a boat has
// finished. ok is false when no deadline governs the current state.
// A negative remaining means the deadline has already passed.
func Remaining(tl *race.TimeLimit, now time.Time) (remaining time.Duration, ok bool) {
	var d *time.Time
	switch tl.Status {
	case race.LimitRacing:
		d = tl.RaceDeadline
	case race.LimitFirstFinished:
		d = tl.FinishingDeadline
	}
	if d == nil {
		return 0, false
	}
	return d.Sub(now), true
}

// AutoDisposition marks every result still lacking a finish and not
// already in a terminal non-finishing status as DNF, moves the machine to
// completed, and records the affected count for audit.
//
// The operation is idempotent: boats already finished or already carrying
// a non-finishing status are skipped, so a second pass affects zero boats.
// Results are mutated in place; affected indexes are returned so the
// caller can persist exactly the changed rows.
func AutoDisposition(tl *race.TimeLimit, results []race.RaceResult) (affected []int) {
	for i := range results {
		r := &results[i]
		if r.FinishTime != nil || r.Status.Finished() || r.Status.NonFinishing() {
			continue
		}
		r.Status = race.StatusDNF
		affected = append(affected, i)
	}
	if tl.Status != race.LimitCompleted {
		// First pass records the audit count; a repeated pass affects no
		// boats and must not zero it.
		tl.DispositionCount = len(affected)
		tl.Status = race.LimitCompleted
	}
	return affected
}
