package scoring

import "github.com/saildesk/raceops/internal/race"

// DiscardPolicy returns how many race scores to discard given the number
// of races sailed so far in the series. The exact table is regatta policy
// and is supplied by configuration; NoDiscards is the zero policy.
type DiscardPolicy func(racesSailed int) int

// NoDiscards keeps every race score.
func NoDiscards(int) int { return 0 }

// StepDiscards builds a policy from a races-sailed threshold table: the
// policy returns the count of the highest step at or below racesSailed.
// Steps must be supplied in ascending races order.
func StepDiscards(steps []DiscardStep) DiscardPolicy {
	return func(racesSailed int) int {
		n := 0
		for _, s := range steps {
			if racesSailed >= s.Races {
				n = s.Count
			}
		}
		return n
	}
}

// DiscardStep is one row of a discard table: from Races races sailed
// onward, Count scores are discarded.
type DiscardStep struct {
	Races int `json:"races"`
	Count int `json:"count"`
}

// PointsFor maps one race outcome to points under low-point scoring: a
// finisher scores its corrected position; any non-finishing status scores
// one worse than the fleet size for that race.
func PointsFor(position int, status race.ResultStatus, fleetSize int) float64 {
	if status.Finished() && position > 0 {
		return float64(position)
	}
	return float64(fleetSize + 1)
}
