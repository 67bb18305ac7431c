package startline

import (
	"fmt"
	"sort"
	"time"

	"github.com/saildesk/raceops/internal/race"
)

// Recompute derives planned warning/preparatory/start times for every
// entry from the schedule configuration and each entry's start_order.
//
// The entry at start_order 1 takes the schedule's first-warning time; the
// entry at order k>1 takes warning(k−1) plus that entry's interval
// override, or the schedule default. Warning times are therefore strictly
// increasing by construction, and calling Recompute twice with no
// configuration change yields identical results.
//
// Entries are mutated in place. Actual times are never touched.
func Recompute(s *race.StartSchedule, entries []race.FleetStartEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if s.Interval <= 0 {
		return &SequenceError{
			Code:       ErrCodeInvalidConfiguration,
			Message:    "schedule interval must be positive",
			ScheduleID: s.ID,
		}
	}

	offsets, err := TemplateOffsets(s)
	if err != nil {
		return err
	}

	ordered, err := byOrder(s, entries)
	if err != nil {
		return err
	}

	warning := s.FirstWarning
	for i, e := range ordered {
		if i > 0 {
			interval := s.Interval
			if e.IntervalOverride != nil {
				interval = *e.IntervalOverride
			}
			if interval <= 0 {
				return &SequenceError{
					Code:       ErrCodeInvalidConfiguration,
					Message:    fmt.Sprintf("interval override for fleet %s must be positive", e.FleetID),
					ScheduleID: s.ID,
					FleetID:    e.FleetID,
				}
			}
			warning = ordered[i-1].PlannedWarning.Add(interval)
		}

		e.PlannedWarning = warning
		e.PlannedStart = warning.Add(offsets.Warning)
		if offsets.HasPrep {
			prep := warning.Add(offsets.PrepAfterWarning())
			e.PlannedPrep = &prep
		} else {
			e.PlannedPrep = nil
		}
	}
	return nil
}

// GeneralRecall re-queues one fleet after a general recall.
//
// The recalled entry's actual times are cleared, its recall count is
// incremented, its start_order moves to max(start_order)+1 while every
// entry behind it shifts down by one, and it returns to pending at the
// back of the queue. Planned times for the whole schedule are then
// recomputed, so start_order stays a contiguous permutation of 1..N and
// there is always a single well-defined next fleet to start.
//
// A recall is an expected operational event, not an error; it is rejected
// only for fleets in a terminal failure state or absent from the schedule.
func GeneralRecall(s *race.StartSchedule, entries []race.FleetStartEntry, fleetID string) (*race.FleetStartEntry, error) {
	var recalled *race.FleetStartEntry
	for i := range entries {
		if entries[i].FleetID == fleetID {
			recalled = &entries[i]
			break
		}
	}
	if recalled == nil {
		return nil, &SequenceError{
			Code:       ErrCodeUnknownFleet,
			Message:    "fleet has no entry in schedule",
			ScheduleID: s.ID,
			FleetID:    fleetID,
		}
	}

	switch recalled.Status {
	case race.StartPostponed, race.StartAbandoned:
		return nil, &SequenceError{
			Code:       ErrCodeOutOfSequence,
			Message:    fmt.Sprintf("cannot recall a fleet in %s", recalled.Status),
			ScheduleID: s.ID,
			FleetID:    fleetID,
		}
	}

	// Validate contiguity before mutating anything.
	if _, err := byOrder(s, entries); err != nil {
		return nil, err
	}

	old := recalled.StartOrder
	for i := range entries {
		if entries[i].StartOrder > old {
			entries[i].StartOrder--
		}
	}
	recalled.StartOrder = len(entries)

	recalled.Status = race.StartGeneralRecall
	recalled.ActualWarning = nil
	recalled.ActualPrep = nil
	recalled.ActualStart = nil
	recalled.RecallCount++
	recalled.Status = race.StartPending

	if err := Recompute(s, entries); err != nil {
		return nil, err
	}
	return recalled, nil
}

// Next returns the pending entry with the lowest start_order, or nil when
// no fleet is left to start.
func Next(entries []race.FleetStartEntry) *race.FleetStartEntry {
	var next *race.FleetStartEntry
	for i := range entries {
		e := &entries[i]
		if e.Status.Terminal() {
			continue
		}
		if next == nil || e.StartOrder < next.StartOrder {
			next = e
		}
	}
	return next
}

// byOrder returns pointers to the entries sorted by start_order after
// validating that the orders form a contiguous permutation of 1..N.
func byOrder(s *race.StartSchedule, entries []race.FleetStartEntry) ([]*race.FleetStartEntry, error) {
	ordered := make([]*race.FleetStartEntry, 0, len(entries))
	for i := range entries {
		ordered = append(ordered, &entries[i])
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartOrder < ordered[j].StartOrder
	})
	for i, e := range ordered {
		if e.StartOrder != i+1 {
			return nil, &SequenceError{
				Code:       ErrCodeInvalidConfiguration,
				Message:    fmt.Sprintf("start orders are not a contiguous 1..%d permutation", len(entries)),
				ScheduleID: s.ID,
			}
		}
	}
	return ordered, nil
}

// actualOrPlanned stamps a signal: a zero at falls back to the planned
// time. Used by Transition.
func actualOrPlanned(at time.Time, planned time.Time) time.Time {
	if at.IsZero() {
		return planned
	}
	return at
}
