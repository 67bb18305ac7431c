package handicap

import (
	"errors"
	"fmt"
	"time"

	"github.com/saildesk/raceops/internal/race"
)

// Classic PHRF time-on-time constants, used whenever a system leaves its
// own numerator/denominator unset.
const (
	DefaultNumerator   = 650
	DefaultDenominator = 550
)

// CalcErrorCode categorizes correction failures.
type CalcErrorCode string

const (
	// ErrCodeInvalidInput indicates a calculation missing a required input,
	// e.g. time-on-distance without a course distance.
	ErrCodeInvalidInput CalcErrorCode = "INVALID_INPUT"

	// ErrCodeInvalidConfiguration indicates a system definition that can
	// never produce a finite correction.
	ErrCodeInvalidConfiguration CalcErrorCode = "INVALID_CONFIGURATION"
)

// CalcError is a structured correction error.
type CalcError struct {
	Code    CalcErrorCode
	Message string
	System  string
}

func (e *CalcError) Error() string {
	if e.System != "" {
		return fmt.Sprintf("%s: %s (system=%s)", e.Code, e.Message, e.System)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidInput reports whether err is a missing-input rejection.
func IsInvalidInput(err error) bool {
	var ce *CalcError
	return errors.As(err, &ce) && ce.Code == ErrCodeInvalidInput
}

// TCF derives the time correction factor for a boat's rating under a
// time-on-time system.
//
//   - PHRF family: numerator / (denominator + rating), classic 650/550.
//   - IRC-style: the stored rating is the TCF directly.
//   - Generic: the system's own constants over the same form.
func TCF(sys race.HandicapSystem, rating float64) (float64, error) {
	switch sys.Family {
	case race.FamilyIRC:
		if rating <= 0 {
			return 0, &CalcError{
				Code:    ErrCodeInvalidInput,
				Message: fmt.Sprintf("IRC rating must be a positive TCF, got %v", rating),
				System:  sys.Name,
			}
		}
		return rating, nil
	case race.FamilyPHRF, race.FamilyGeneric:
		num, den := sys.Numerator, sys.Denominator
		if num == 0 {
			num = DefaultNumerator
		}
		if den == 0 {
			den = DefaultDenominator
		}
		if den+rating <= 0 {
			return 0, &CalcError{
				Code:    ErrCodeInvalidConfiguration,
				Message: fmt.Sprintf("rating %v with base %v yields a non-positive divisor", rating, den),
				System:  sys.Name,
			}
		}
		return num / (den + rating), nil
	default:
		return 0, &CalcError{
			Code:    ErrCodeInvalidConfiguration,
			Message: "unknown system family " + string(sys.Family),
			System:  sys.Name,
		}
	}
}

// Corrected computes a boat's corrected time and coefficient.
//
// For time-on-time the coefficient is the TCF and corrected = elapsed×TCF.
// For time-on-distance the coefficient is the rating itself (seconds per
// nautical mile) and corrected = elapsed − distance×rating; distanceNM is
// required and its absence is an InvalidInput rejection.
func Corrected(sys race.HandicapSystem, rating float64, elapsed time.Duration, distanceNM *float64) (time.Duration, float64, error) {
	switch sys.Kind {
	case race.TimeOnTime:
		tcf, err := TCF(sys, rating)
		if err != nil {
			return 0, 0, err
		}
		corrected := time.Duration(float64(elapsed) * tcf)
		return corrected, tcf, nil
	case race.TimeOnDistance:
		if distanceNM == nil {
			return 0, 0, &CalcError{
				Code:    ErrCodeInvalidInput,
				Message: "time-on-distance correction requires a course distance",
				System:  sys.Name,
			}
		}
		allowance := time.Duration(*distanceNM * rating * float64(time.Second))
		return elapsed - allowance, rating, nil
	default:
		return 0, 0, &CalcError{
			Code:    ErrCodeInvalidConfiguration,
			Message: "unknown calculation kind " + string(sys.Kind),
			System:  sys.Name,
		}
	}
}
