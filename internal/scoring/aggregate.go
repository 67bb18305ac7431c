package scoring

import (
	"sort"

	"github.com/saildesk/raceops/internal/race"
)

// RaceScore is one boat's outcome in one race of a series. Scored is
// false for races not yet scored; those races contribute no points and
// make the boat's standing provisional.
type RaceScore struct {
	RaceID string
	Points float64
	Scored bool
}

// BoatSeries is one boat's ordered per-race score list for a series.
type BoatSeries struct {
	BoatID string
	Scores []RaceScore
}

// Options configures one aggregation pass. A nil Discards keeps all
// scores; a nil TieBreaker leaves ties in stable input order.
type Options struct {
	Discards   DiscardPolicy
	TieBreaker TieBreaker
}

// Standings computes ranked series standings.
//
// For each boat: total = sum of scored race points, the worst N scores are
// discarded per the policy (N from races scored), net = total − discarded.
// Boats are ranked by ascending net points with standard competition
// ranking; identical net points are flagged tied and ordered by the
// configured tie-breaker, falling back to stable input order so tied boats
// are never silently reordered. Boats with any unscored race are marked
// provisional rather than dropped.
func Standings(seriesID string, boats []BoatSeries, opts Options) []race.SeriesStanding {
	discards := opts.Discards
	if discards == nil {
		discards = NoDiscards
	}
	breaker := opts.TieBreaker
	if breaker == nil {
		breaker = NoopTieBreaker{}
	}

	type row struct {
		standing race.SeriesStanding
		counted  []float64 // scores kept after discards, for tie-breaking
		input    int
	}

	rows := make([]row, 0, len(boats))
	for i, b := range boats {
		var scored []float64
		provisional := false
		for _, s := range b.Scores {
			if !s.Scored {
				provisional = true
				continue
			}
			scored = append(scored, s.Points)
		}

		n := discards(len(scored))
		if n < 0 {
			n = 0
		}
		if n > len(scored) {
			n = len(scored)
		}

		// Worst n scores are the discard set.
		desc := append([]float64(nil), scored...)
		sort.Sort(sort.Reverse(sort.Float64Slice(desc)))
		var dropped float64
		for _, p := range desc[:n] {
			dropped += p
		}
		var total float64
		for _, p := range scored {
			total += p
		}

		rows = append(rows, row{
			standing: race.SeriesStanding{
				SeriesID:    seriesID,
				BoatID:      b.BoatID,
				RacesScored: len(scored),
				Total:       total,
				Discarded:   dropped,
				DiscardN:    n,
				Net:         total - dropped,
				Provisional: provisional,
			},
			counted: desc[n:],
			input:   i,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].standing.Net != rows[j].standing.Net {
			return rows[i].standing.Net < rows[j].standing.Net
		}
		return breaker.Less(rows[i].counted, rows[j].counted)
	})

	out := make([]race.SeriesStanding, len(rows))
	for i := range rows {
		s := rows[i].standing
		if i > 0 && s.Net == rows[i-1].standing.Net {
			s.Rank = out[i-1].Rank
			s.Tied = true
			out[i-1].Tied = true
			out[i-1].TieBreaker = breaker.Name()
			s.TieBreaker = breaker.Name()
		} else {
			s.Rank = i + 1
		}
		out[i] = s
	}
	return out
}
