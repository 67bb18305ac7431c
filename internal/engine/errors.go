package engine

import (
	"errors"
	"fmt"
)

// OpsErrorCode categorizes engine-level errors.
type OpsErrorCode string

const (
	// ErrCodeStaleRecomputation indicates a recomputation pass that was
	// superseded by a newer input edit before it ran. The pass is
	// discarded; the newer pass produces the current output.
	ErrCodeStaleRecomputation OpsErrorCode = "STALE_RECOMPUTATION"

	// ErrCodeIncompleteInput indicates series input with unscored races.
	// The aggregator still produces a provisional standing; this code only
	// appears when a caller demands a final one.
	ErrCodeIncompleteInput OpsErrorCode = "INCOMPLETE_INPUT"

	// ErrCodeInvalidConfiguration indicates configuration the engine
	// cannot operate with. Surfaced to callers as a hard failure.
	ErrCodeInvalidConfiguration OpsErrorCode = "INVALID_CONFIGURATION"

	// ErrCodeOutOfSequence indicates an operation that is not legal in the
	// race's current state, e.g. a finish recorded before the start.
	ErrCodeOutOfSequence OpsErrorCode = "OUT_OF_SEQUENCE"
)

// OpsError is a structured engine error.
type OpsError struct {
	Code    OpsErrorCode
	Message string
	RaceID  string
}

func (e *OpsError) Error() string {
	if e.RaceID != "" {
		return fmt.Sprintf("%s: %s (race=%s)", e.Code, e.Message, e.RaceID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStale reports whether err is a superseded-recomputation discard.
func IsStale(err error) bool {
	var oe *OpsError
	return errors.As(err, &oe) && oe.Code == ErrCodeStaleRecomputation
}

// IsIncompleteInput reports whether err flags partial series data.
func IsIncompleteInput(err error) bool {
	var oe *OpsError
	return errors.As(err, &oe) && oe.Code == ErrCodeIncompleteInput
}
