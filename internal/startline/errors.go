package startline

import (
	"errors"
	"fmt"
)

// SequenceErrorCode categorizes scheduler errors.
type SequenceErrorCode string

const (
	// ErrCodeOutOfSequence indicates a signal or recall that is not legal
	// from the entry's current status.
	ErrCodeOutOfSequence SequenceErrorCode = "OUT_OF_SEQUENCE"

	// ErrCodeInvalidConfiguration indicates a schedule whose entries or
	// template cannot produce a valid sequence.
	ErrCodeInvalidConfiguration SequenceErrorCode = "INVALID_CONFIGURATION"

	// ErrCodeUnknownFleet indicates an operation referencing a fleet with
	// no entry in the schedule.
	ErrCodeUnknownFleet SequenceErrorCode = "UNKNOWN_FLEET"
)

// SequenceError is a structured scheduler error with the fleet and
// schedule context attached.
type SequenceError struct {
	Code       SequenceErrorCode
	Message    string
	ScheduleID string
	FleetID    string
}

func (e *SequenceError) Error() string {
	if e.FleetID != "" {
		return fmt.Sprintf("%s: %s (schedule=%s, fleet=%s)", e.Code, e.Message, e.ScheduleID, e.FleetID)
	}
	if e.ScheduleID != "" {
		return fmt.Sprintf("%s: %s (schedule=%s)", e.Code, e.Message, e.ScheduleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsOutOfSequence reports whether err is an out-of-sequence rejection.
// Uses errors.As to handle wrapped errors.
func IsOutOfSequence(err error) bool {
	var se *SequenceError
	return errors.As(err, &se) && se.Code == ErrCodeOutOfSequence
}

// IsInvalidConfiguration reports whether err is a configuration error.
func IsInvalidConfiguration(err error) bool {
	var se *SequenceError
	return errors.As(err, &se) && se.Code == ErrCodeInvalidConfiguration
}
