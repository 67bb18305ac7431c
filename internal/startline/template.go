package startline

import (
	"time"

	"github.com/saildesk/raceops/internal/race"
)

// Offsets holds a sequence template resolved to concrete signal offsets.
// Both durations are counted back from the start signal: the warning is
// made Warning before the start, the preparatory Prep before the start.
// HasPrep is false for templates without a preparatory signal.
type Offsets struct {
	Warning time.Duration
	Prep    time.Duration
	HasPrep bool
}

// TemplateOffsets resolves a schedule's template to signal offsets. For
// TemplateCustom the schedule's own WarningOffset/PrepOffset are used; a
// zero PrepOffset means no preparatory signal.
func TemplateOffsets(s *race.StartSchedule) (Offsets, error) {
	switch s.Template {
	case race.Template541:
		return Offsets{Warning: 5 * time.Minute, Prep: 4 * time.Minute, HasPrep: true}, nil
	case race.Template321:
		return Offsets{Warning: 3 * time.Minute, Prep: 2 * time.Minute, HasPrep: true}, nil
	case race.Template51:
		return Offsets{Warning: 5 * time.Minute}, nil
	case race.TemplateCustom:
		if s.WarningOffset <= 0 {
			return Offsets{}, &SequenceError{
				Code:       ErrCodeInvalidConfiguration,
				Message:    "custom template requires a positive warning offset",
				ScheduleID: s.ID,
			}
		}
		if s.PrepOffset < 0 || s.PrepOffset >= s.WarningOffset {
			return Offsets{}, &SequenceError{
				Code:       ErrCodeInvalidConfiguration,
				Message:    "custom prep offset must be zero or less than the warning offset",
				ScheduleID: s.ID,
			}
		}
		return Offsets{
			Warning: s.WarningOffset,
			Prep:    s.PrepOffset,
			HasPrep: s.PrepOffset > 0,
		}, nil
	default:
		return Offsets{}, &SequenceError{
			Code:       ErrCodeInvalidConfiguration,
			Message:    "unknown sequence template " + string(s.Template),
			ScheduleID: s.ID,
		}
	}
}

// PrepAfterWarning returns the delay between the warning signal and the
// preparatory signal (warning offset minus prep offset).
func (o Offsets) PrepAfterWarning() time.Duration {
	return o.Warning - o.Prep
}
