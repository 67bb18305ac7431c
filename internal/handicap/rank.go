package handicap

import (
	"fmt"
	"sort"
	"time"

	"github.com/saildesk/raceops/internal/race"
)

// Entry is one boat's raw input to position assignment.
type Entry struct {
	BoatID  string
	Rating  float64
	Elapsed *time.Duration
	Status  race.ResultStatus
}

// Rank computes corrected times and positions for one race under one
// system.
//
// Finishers are ranked by ascending corrected time using standard
// competition ranking (1, 2, 2, 4); boats with exactly equal corrected
// times share a position and are flagged Tied — resolving the tie is
// deferred to race-specific rules. Non-finishers are excluded from
// ranking and carry their status code with position zero.
//
// The output order is deterministic: finishers by corrected time with
// input order breaking exact ties, then non-finishers in input order.
func Rank(sys race.HandicapSystem, raceID string, entries []Entry, distanceNM *float64) ([]race.HandicapResult, error) {
	type ranked struct {
		res   race.HandicapResult
		input int
	}

	var finishers []ranked
	var rest []ranked

	for i, e := range entries {
		hr := race.HandicapResult{
			RaceID: raceID,
			BoatID: e.BoatID,
			System: sys.Name,
			Status: e.Status,
		}
		if !e.Status.Finished() {
			rest = append(rest, ranked{res: hr, input: i})
			continue
		}
		if e.Elapsed == nil {
			return nil, &CalcError{
				Code:    ErrCodeInvalidInput,
				Message: fmt.Sprintf("boat %s is finished but has no elapsed time", e.BoatID),
				System:  sys.Name,
			}
		}
		corrected, coeff, err := Corrected(sys, e.Rating, *e.Elapsed, distanceNM)
		if err != nil {
			return nil, err
		}
		hr.Corrected = corrected
		hr.TCF = coeff
		finishers = append(finishers, ranked{res: hr, input: i})
	}

	sort.SliceStable(finishers, func(i, j int) bool {
		return finishers[i].res.Corrected < finishers[j].res.Corrected
	})

	for i := range finishers {
		r := &finishers[i]
		// Standard competition ranking: tied boats share the position of
		// the first of their group.
		if i > 0 && r.res.Corrected == finishers[i-1].res.Corrected {
			r.res.Position = finishers[i-1].res.Position
			r.res.Tied = true
			finishers[i-1].res.Tied = true
		} else {
			r.res.Position = i + 1
		}
		r.res.DeltaToLeader = r.res.Corrected - finishers[0].res.Corrected
	}

	out := make([]race.HandicapResult, 0, len(entries))
	for _, r := range finishers {
		out = append(out, r.res)
	}
	for _, r := range rest {
		out = append(out, r.res)
	}
	return out, nil
}
