package engine

import (
	"context"

	"github.com/saildesk/raceops/internal/race"
)

// Read passthroughs for the CLI and other consumers. Reads take no race
// lock: derived sets are replaced atomically, so a reader sees either the
// previous or the next complete set.

// CorrectedResults returns the stored corrected set for one (race, system).
func (o *Ops) CorrectedResults(ctx context.Context, raceID, system string) ([]race.HandicapResult, error) {
	return o.store.HandicapResults(ctx, raceID, system)
}

// SeriesStandings returns the stored standings for a series.
func (o *Ops) SeriesStandings(ctx context.Context, seriesID string) ([]race.SeriesStanding, error) {
	return o.store.Standings(ctx, seriesID)
}

// ScheduleEntries returns a schedule's entries in start order.
func (o *Ops) ScheduleEntries(ctx context.Context, scheduleID string) ([]race.FleetStartEntry, error) {
	return o.store.Entries(ctx, scheduleID)
}

// RaceAudit returns a race's audit trail in time order.
func (o *Ops) RaceAudit(ctx context.Context, raceID string) ([]race.Event, error) {
	return o.store.Events(ctx, raceID)
}
