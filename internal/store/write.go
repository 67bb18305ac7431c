package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saildesk/raceops/internal/race"
)

// SaveSchedule upserts a schedule row.
func (s *Store) SaveSchedule(ctx context.Context, sched race.StartSchedule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules
		(id, regatta_id, day, template, warning_offset, prep_offset, interval, first_warning, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			regatta_id = excluded.regatta_id,
			day = excluded.day,
			template = excluded.template,
			warning_offset = excluded.warning_offset,
			prep_offset = excluded.prep_offset,
			interval = excluded.interval,
			first_warning = excluded.first_warning,
			active = excluded.active
	`,
		sched.ID, sched.RegattaID, sched.Day, string(sched.Template),
		int64(sched.WarningOffset), int64(sched.PrepOffset), int64(sched.Interval),
		encodeTime(sched.FirstWarning), sched.Active,
	)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

// SaveEntries replaces every entry of one schedule in a single
// transaction. Entry edits always travel as the whole schedule's entry
// set because re-sequencing (recall, interval edits) touches multiple
// rows and must be all-or-nothing.
func (s *Store) SaveEntries(ctx context.Context, scheduleID string, entries []race.FleetStartEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save entries: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM start_entries WHERE schedule_id = ?`, scheduleID); err != nil {
		return fmt.Errorf("save entries: clear: %w", err)
	}

	for _, e := range entries {
		var prep any
		if e.PlannedPrep != nil {
			prep = encodeTime(*e.PlannedPrep)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO start_entries
			(id, schedule_id, fleet_id, race_id, race_number, start_order, interval_override,
			 planned_warning, planned_prep, planned_start,
			 actual_warning, actual_prep, actual_start, status, recall_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			e.ID, e.ScheduleID, e.FleetID, e.RaceID, e.RaceNumber, e.StartOrder,
			encodeDurPtr(e.IntervalOverride),
			encodeTime(e.PlannedWarning), prep, encodeTime(e.PlannedStart),
			encodeTimePtr(e.ActualWarning), encodeTimePtr(e.ActualPrep), encodeTimePtr(e.ActualStart),
			string(e.Status), e.RecallCount,
		)
		if err != nil {
			return fmt.Errorf("save entries: insert fleet %s: %w", e.FleetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save entries: commit: %w", err)
	}
	return nil
}

// SaveRace upserts a race row. distanceNM is nil for courses without a
// measured distance.
func (s *Store) SaveRace(ctx context.Context, raceID string, distanceNM *float64) error {
	var d any
	if distanceNM != nil {
		d = *distanceNM
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO races (id, distance_nm) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET distance_nm = excluded.distance_nm
	`, raceID, d)
	if err != nil {
		return fmt.Errorf("save race: %w", err)
	}
	return nil
}

// SaveTimeLimit upserts one race's time-limit configuration and state.
func (s *Store) SaveTimeLimit(ctx context.Context, tl race.TimeLimit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_limits
		(race_id, race_limit, first_mark_limit, finishing_window,
		 start_time, first_finish_time,
		 race_deadline, first_mark_deadline, finishing_deadline,
		 status, enforce, disposition_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(race_id) DO UPDATE SET
			race_limit = excluded.race_limit,
			first_mark_limit = excluded.first_mark_limit,
			finishing_window = excluded.finishing_window,
			start_time = excluded.start_time,
			first_finish_time = excluded.first_finish_time,
			race_deadline = excluded.race_deadline,
			first_mark_deadline = excluded.first_mark_deadline,
			finishing_deadline = excluded.finishing_deadline,
			status = excluded.status,
			enforce = excluded.enforce,
			disposition_count = excluded.disposition_count
	`,
		tl.RaceID,
		encodeDurPtr(tl.RaceLimit), encodeDurPtr(tl.FirstMarkLimit), encodeDurPtr(tl.FinishingWindow),
		encodeTimePtr(tl.StartTime), encodeTimePtr(tl.FirstFinishTime),
		encodeTimePtr(tl.RaceDeadline), encodeTimePtr(tl.FirstMarkDeadline), encodeTimePtr(tl.FinishingDeadline),
		string(tl.Status), tl.Enforce, tl.DispositionCount,
	)
	if err != nil {
		return fmt.Errorf("save time limit: %w", err)
	}
	return nil
}

// SaveRating appends a rating certificate. Prior certificates for the
// same (boat, system) are retained for audit; readers take the newest by
// issued_at.
func (s *Store) SaveRating(ctx context.Context, r race.BoatRating) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (boat_id, system, rating, tcf, issued_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(boat_id, system, issued_at) DO UPDATE SET
			rating = excluded.rating,
			tcf = excluded.tcf
	`, r.BoatID, r.System, r.Rating, r.TCF, encodeTime(r.IssuedAt))
	if err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	return nil
}

// SaveResult upserts one boat's raw result.
func (s *Store) SaveResult(ctx context.Context, r race.RaceResult) error {
	return s.saveResults(ctx, []race.RaceResult{r})
}

// SaveResults upserts a batch of raw results in one transaction. Used by
// auto-disposition so the bulk DNF write is all-or-nothing.
func (s *Store) SaveResults(ctx context.Context, results []race.RaceResult) error {
	return s.saveResults(ctx, results)
}

func (s *Store) saveResults(ctx context.Context, results []race.RaceResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save results: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO results (race_id, boat_id, finish_time, elapsed, status, finalized)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(race_id, boat_id) DO UPDATE SET
				finish_time = excluded.finish_time,
				elapsed = excluded.elapsed,
				status = excluded.status,
				finalized = excluded.finalized
		`, r.RaceID, r.BoatID, encodeTimePtr(r.FinishTime), encodeDurPtr(r.Elapsed), string(r.Status), r.Finalized)
		if err != nil {
			return fmt.Errorf("save results: boat %s: %w", r.BoatID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save results: commit: %w", err)
	}
	return nil
}

// ReplaceHandicapResults swaps the whole derived corrected set for one
// (race, system) in a single transaction. Readers see either the previous
// complete set or the new complete set, never a mix.
func (s *Store) ReplaceHandicapResults(ctx context.Context, raceID, system string, results []race.HandicapResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace handicap results: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM handicap_results WHERE race_id = ? AND system = ?`, raceID, system); err != nil {
		return fmt.Errorf("replace handicap results: clear: %w", err)
	}

	for _, hr := range results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO handicap_results
			(race_id, boat_id, system, tcf, corrected, position, tied, delta_to_leader, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, hr.RaceID, hr.BoatID, hr.System, hr.TCF, int64(hr.Corrected), hr.Position, hr.Tied, int64(hr.DeltaToLeader), string(hr.Status))
		if err != nil {
			return fmt.Errorf("replace handicap results: boat %s: %w", hr.BoatID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace handicap results: commit: %w", err)
	}
	return nil
}

// ReplaceStandings swaps a whole series' standings atomically. Only the
// scoring aggregator calls this.
func (s *Store) ReplaceStandings(ctx context.Context, seriesID string, standings []race.SeriesStanding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace standings: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM standings WHERE series_id = ?`, seriesID); err != nil {
		return fmt.Errorf("replace standings: clear: %w", err)
	}

	for _, st := range standings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO standings
			(series_id, boat_id, races_scored, total_points, discarded_points,
			 discard_count, net_points, rank, tied, tie_breaker, provisional)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, st.SeriesID, st.BoatID, st.RacesScored, st.Total, st.Discarded,
			st.DiscardN, st.Net, st.Rank, st.Tied, st.TieBreaker, st.Provisional)
		if err != nil {
			return fmt.Errorf("replace standings: boat %s: %w", st.BoatID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace standings: commit: %w", err)
	}
	return nil
}

// AddSeriesRace registers a race as part of a series at a sailing-order
// position. Idempotent.
func (s *Store) AddSeriesRace(ctx context.Context, seriesID, raceID string, seq int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO series_races (series_id, race_id, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(series_id, race_id) DO UPDATE SET seq = excluded.seq
	`, seriesID, raceID, seq)
	if err != nil {
		return fmt.Errorf("add series race: %w", err)
	}
	return nil
}

// WriteEvent appends an audit event. Event IDs are content-addressed, so
// ON CONFLICT DO NOTHING makes duplicate writes of the same event no-ops.
func (s *Store) WriteEvent(ctx context.Context, ev race.Event) error {
	payload := "{}"
	if ev.Payload != nil {
		b, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("write event: marshal payload: %w", err)
		}
		payload = string(b)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, kind, race_id, token, at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, ev.ID, string(ev.Kind), ev.RaceID, ev.Token, encodeTime(ev.At), payload)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
