package engine

import (
	"context"
	"sort"

	"github.com/saildesk/raceops/internal/race"
	"github.com/saildesk/raceops/internal/scoring"
)

// AddSeriesRace registers a race in a series at a sailing-order position.
func (o *Ops) AddSeriesRace(ctx context.Context, seriesID, raceID string, seq int) error {
	return o.store.AddSeriesRace(ctx, seriesID, raceID, seq)
}

// RecomputeSeries rebuilds a series' standings under one handicap system
// from the current corrected results and replaces them atomically.
//
// A race with no corrected results yet counts as unscored: boats keep a
// standing but it is marked provisional. Within a scored race, a boat
// with no result is scored DNC (fleet size + 1) per low-point convention.
func (o *Ops) RecomputeSeries(ctx context.Context, seriesID, system string) ([]race.SeriesStanding, error) {
	if _, ok := o.cfg.Systems[system]; !ok {
		return nil, &OpsError{
			Code:    ErrCodeInvalidConfiguration,
			Message: "unknown handicap system " + system,
		}
	}

	raceIDs, err := o.store.SeriesRaces(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	// Snapshot every race's corrected set, then aggregate. The per-race
	// sets are each internally consistent (they are replaced atomically);
	// the aggregation pass itself replaces the series' standings in one
	// transaction below.
	type scoredRace struct {
		id        string
		scored    bool
		fleetSize int
		points    map[string]float64 // boat -> points
	}

	races := make([]scoredRace, 0, len(raceIDs))
	boatSet := make(map[string]bool)
	for _, id := range raceIDs {
		ranked, err := o.store.HandicapResults(ctx, id, system)
		if err != nil {
			return nil, err
		}
		sr := scoredRace{id: id, scored: len(ranked) > 0, fleetSize: len(ranked)}
		if sr.scored {
			sr.points = make(map[string]float64, len(ranked))
			for _, hr := range ranked {
				sr.points[hr.BoatID] = scoring.PointsFor(hr.Position, hr.Status, sr.fleetSize)
				boatSet[hr.BoatID] = true
			}
		}
		races = append(races, sr)
	}

	boats := make([]string, 0, len(boatSet))
	for b := range boatSet {
		boats = append(boats, b)
	}
	sort.Strings(boats)

	series := make([]scoring.BoatSeries, 0, len(boats))
	for _, boat := range boats {
		bs := scoring.BoatSeries{BoatID: boat, Scores: make([]scoring.RaceScore, 0, len(races))}
		for _, sr := range races {
			score := scoring.RaceScore{RaceID: sr.id}
			if sr.scored {
				score.Scored = true
				if p, ok := sr.points[boat]; ok {
					score.Points = p
				} else {
					score.Points = float64(sr.fleetSize + 1) // DNC
				}
			}
			bs.Scores = append(bs.Scores, score)
		}
		series = append(series, bs)
	}

	standings := scoring.Standings(seriesID, series, scoring.Options{
		Discards:   o.cfg.Scoring.Policy(),
		TieBreaker: o.cfg.Scoring.Breaker(),
	})

	if err := o.store.ReplaceStandings(ctx, seriesID, standings); err != nil {
		return nil, err
	}
	o.log.Info("standings recomputed", "series", seriesID, "system", system,
		"boats", len(standings), "races", len(races))
	return standings, nil
}

// FinalSeries recomputes a series' standings for publication and rejects
// partial input: any race still without corrected results leaves the
// standings provisional and yields an INCOMPLETE_INPUT error. Callers
// wanting the provisional view call RecomputeSeries directly.
func (o *Ops) FinalSeries(ctx context.Context, seriesID, system string) ([]race.SeriesStanding, error) {
	standings, err := o.RecomputeSeries(ctx, seriesID, system)
	if err != nil {
		return nil, err
	}
	for _, st := range standings {
		if st.Provisional {
			return nil, &OpsError{
				Code:    ErrCodeIncompleteInput,
				Message: "series " + seriesID + " has unscored races",
			}
		}
	}
	return standings, nil
}
