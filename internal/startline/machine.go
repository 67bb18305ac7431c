package startline

import (
	"fmt"
	"time"

	"github.com/saildesk/raceops/internal/race"
)

// transitions is the exhaustive signal transition table. General recall is
// not listed here; it is handled by GeneralRecall because it re-sequences
// the whole schedule rather than advancing one entry.
var transitions = map[race.StartStatus][]race.StartStatus{
	race.StartPending:     {race.StartWarning, race.StartPostponed, race.StartAbandoned},
	race.StartWarning:     {race.StartPreparatory, race.StartOneMinute, race.StartPostponed, race.StartAbandoned},
	race.StartPreparatory: {race.StartOneMinute, race.StartPostponed, race.StartAbandoned},
	race.StartOneMinute:   {race.StartStarted, race.StartPostponed, race.StartAbandoned},
	race.StartStarted:     {},
	race.StartPostponed:   {},
	race.StartAbandoned:   {},
}

// CanTransition reports whether a signal transition is legal.
func CanTransition(from, to race.StartStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition advances one entry through the signal sequence, recording the
// actual signal time. A zero at stamps the planned time instead.
//
// Warning→one_minute is allowed so templates without a preparatory signal
// (5-1-go) skip straight past it. Postponed and abandoned are terminal and
// halt all downstream deadline computation for the entry.
func Transition(e *race.FleetStartEntry, to race.StartStatus, at time.Time) error {
	if !CanTransition(e.Status, to) {
		return &SequenceError{
			Code:       ErrCodeOutOfSequence,
			Message:    fmt.Sprintf("cannot transition from %s to %s", e.Status, to),
			ScheduleID: e.ScheduleID,
			FleetID:    e.FleetID,
		}
	}

	switch to {
	case race.StartWarning:
		t := actualOrPlanned(at, e.PlannedWarning)
		e.ActualWarning = &t
	case race.StartPreparatory:
		planned := e.PlannedWarning
		if e.PlannedPrep != nil {
			planned = *e.PlannedPrep
		}
		t := actualOrPlanned(at, planned)
		e.ActualPrep = &t
	case race.StartOneMinute:
		// The one-minute signal is one minute before the start; no actual
		// field is recorded for it.
	case race.StartStarted:
		t := actualOrPlanned(at, e.PlannedStart)
		e.ActualStart = &t
	}

	e.Status = to
	return nil
}
