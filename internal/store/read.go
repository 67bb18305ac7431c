package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/saildesk/raceops/internal/race"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Schedule loads one schedule by ID.
func (s *Store) Schedule(ctx context.Context, id string) (race.StartSchedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, regatta_id, day, template, warning_offset, prep_offset, interval, first_warning, active
		FROM schedules WHERE id = ?
	`, id)

	var sched race.StartSchedule
	var template, firstWarning string
	var warnOff, prepOff, interval int64
	err := row.Scan(&sched.ID, &sched.RegattaID, &sched.Day, &template,
		&warnOff, &prepOff, &interval, &firstWarning, &sched.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return race.StartSchedule{}, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return race.StartSchedule{}, fmt.Errorf("load schedule: %w", err)
	}

	sched.Template = race.SequenceTemplate(template)
	sched.WarningOffset = durFromNanos(warnOff)
	sched.PrepOffset = durFromNanos(prepOff)
	sched.Interval = durFromNanos(interval)
	sched.FirstWarning, err = decodeTime(firstWarning)
	if err != nil {
		return race.StartSchedule{}, fmt.Errorf("load schedule: %w", err)
	}
	return sched, nil
}

// ActiveSchedule loads the single active schedule for a (regatta, day).
func (s *Store) ActiveSchedule(ctx context.Context, regattaID, day string) (race.StartSchedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id FROM schedules WHERE regatta_id = ? AND day = ? AND active = 1
	`, regattaID, day)
	var id string
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return race.StartSchedule{}, fmt.Errorf("active schedule for %s/%s: %w", regattaID, day, ErrNotFound)
	}
	if err != nil {
		return race.StartSchedule{}, fmt.Errorf("load active schedule: %w", err)
	}
	return s.Schedule(ctx, id)
}

// Entries loads all entries of one schedule ordered by start_order.
func (s *Store) Entries(ctx context.Context, scheduleID string) ([]race.FleetStartEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, schedule_id, fleet_id, race_id, race_number, start_order, interval_override,
		       planned_warning, planned_prep, planned_start,
		       actual_warning, actual_prep, actual_start, status, recall_count
		FROM start_entries
		WHERE schedule_id = ?
		ORDER BY start_order ASC
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []race.FleetStartEntry
	for rows.Next() {
		var e race.FleetStartEntry
		var status, plannedWarning, plannedStart string
		var plannedPrep, actualWarning, actualPrep, actualStart sql.NullString
		var override sql.NullInt64

		err := rows.Scan(&e.ID, &e.ScheduleID, &e.FleetID, &e.RaceID, &e.RaceNumber,
			&e.StartOrder, &override,
			&plannedWarning, &plannedPrep, &plannedStart,
			&actualWarning, &actualPrep, &actualStart, &status, &e.RecallCount)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		e.Status = race.StartStatus(status)
		e.IntervalOverride = decodeDurPtr(override)
		if e.PlannedWarning, err = decodeTime(plannedWarning); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.PlannedStart, err = decodeTime(plannedStart); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.PlannedPrep, err = decodeTimePtr(plannedPrep); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.ActualWarning, err = decodeTimePtr(actualWarning); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.ActualPrep, err = decodeTimePtr(actualPrep); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.ActualStart, err = decodeTimePtr(actualStart); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	if entries == nil {
		entries = []race.FleetStartEntry{}
	}
	return entries, nil
}

// RaceDistance returns a race's course distance in nautical miles, nil
// when none is recorded.
func (s *Store) RaceDistance(ctx context.Context, raceID string) (*float64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT distance_nm FROM races WHERE id = ?`, raceID)
	var d sql.NullFloat64
	err := row.Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load race distance: %w", err)
	}
	if !d.Valid {
		return nil, nil
	}
	return &d.Float64, nil
}

// BoatRaces returns the races a boat has a result in. Used to find the
// recomputation fan-out of a rating change.
func (s *Store) BoatRaces(ctx context.Context, boatID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT race_id FROM results WHERE boat_id = ? ORDER BY race_id ASC
	`, boatID)
	if err != nil {
		return nil, fmt.Errorf("query boat races: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan boat race: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boat races: %w", err)
	}
	return ids, nil
}

// TimeLimit loads one race's time-limit state.
func (s *Store) TimeLimit(ctx context.Context, raceID string) (race.TimeLimit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT race_id, race_limit, first_mark_limit, finishing_window,
		       start_time, first_finish_time,
		       race_deadline, first_mark_deadline, finishing_deadline,
		       status, enforce, disposition_count
		FROM time_limits WHERE race_id = ?
	`, raceID)

	var tl race.TimeLimit
	var status string
	var raceLimit, firstMark, window sql.NullInt64
	var start, firstFinish, raceDl, markDl, finDl sql.NullString

	err := row.Scan(&tl.RaceID, &raceLimit, &firstMark, &window,
		&start, &firstFinish, &raceDl, &markDl, &finDl,
		&status, &tl.Enforce, &tl.DispositionCount)
	if errors.Is(err, sql.ErrNoRows) {
		return race.TimeLimit{}, fmt.Errorf("time limit for race %s: %w", raceID, ErrNotFound)
	}
	if err != nil {
		return race.TimeLimit{}, fmt.Errorf("load time limit: %w", err)
	}

	tl.Status = race.LimitStatus(status)
	tl.RaceLimit = decodeDurPtr(raceLimit)
	tl.FirstMarkLimit = decodeDurPtr(firstMark)
	tl.FinishingWindow = decodeDurPtr(window)
	if tl.StartTime, err = decodeTimePtr(start); err != nil {
		return race.TimeLimit{}, err
	}
	if tl.FirstFinishTime, err = decodeTimePtr(firstFinish); err != nil {
		return race.TimeLimit{}, err
	}
	if tl.RaceDeadline, err = decodeTimePtr(raceDl); err != nil {
		return race.TimeLimit{}, err
	}
	if tl.FirstMarkDeadline, err = decodeTimePtr(markDl); err != nil {
		return race.TimeLimit{}, err
	}
	if tl.FinishingDeadline, err = decodeTimePtr(finDl); err != nil {
		return race.TimeLimit{}, err
	}
	return tl, nil
}

// CurrentRating loads the newest certificate for (boat, system).
func (s *Store) CurrentRating(ctx context.Context, boatID, system string) (race.BoatRating, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT boat_id, system, rating, tcf, issued_at
		FROM ratings
		WHERE boat_id = ? AND system = ?
		ORDER BY issued_at DESC
		LIMIT 1
	`, boatID, system)

	var r race.BoatRating
	var issued string
	err := row.Scan(&r.BoatID, &r.System, &r.Rating, &r.TCF, &issued)
	if errors.Is(err, sql.ErrNoRows) {
		return race.BoatRating{}, fmt.Errorf("rating for %s under %s: %w", boatID, system, ErrNotFound)
	}
	if err != nil {
		return race.BoatRating{}, fmt.Errorf("load rating: %w", err)
	}
	if r.IssuedAt, err = decodeTime(issued); err != nil {
		return race.BoatRating{}, err
	}
	return r, nil
}

// Results loads all raw results of one race ordered by boat ID.
func (s *Store) Results(ctx context.Context, raceID string) ([]race.RaceResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT race_id, boat_id, finish_time, elapsed, status, finalized
		FROM results WHERE race_id = ?
		ORDER BY boat_id ASC
	`, raceID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []race.RaceResult
	for rows.Next() {
		var r race.RaceResult
		var status string
		var finish sql.NullString
		var elapsed sql.NullInt64
		if err := rows.Scan(&r.RaceID, &r.BoatID, &finish, &elapsed, &status, &r.Finalized); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Status = race.ResultStatus(status)
		r.Elapsed = decodeDurPtr(elapsed)
		if r.FinishTime, err = decodeTimePtr(finish); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	if results == nil {
		results = []race.RaceResult{}
	}
	return results, nil
}

// HandicapResults loads the derived corrected set for one (race, system),
// ranked boats first.
func (s *Store) HandicapResults(ctx context.Context, raceID, system string) ([]race.HandicapResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT race_id, boat_id, system, tcf, corrected, position, tied, delta_to_leader, status
		FROM handicap_results
		WHERE race_id = ? AND system = ?
		ORDER BY CASE WHEN position = 0 THEN 1 ELSE 0 END, position ASC, boat_id ASC
	`, raceID, system)
	if err != nil {
		return nil, fmt.Errorf("query handicap results: %w", err)
	}
	defer rows.Close()

	var out []race.HandicapResult
	for rows.Next() {
		var hr race.HandicapResult
		var status string
		var corrected, delta int64
		if err := rows.Scan(&hr.RaceID, &hr.BoatID, &hr.System, &hr.TCF,
			&corrected, &hr.Position, &hr.Tied, &delta, &status); err != nil {
			return nil, fmt.Errorf("scan handicap result: %w", err)
		}
		hr.Corrected = durFromNanos(corrected)
		hr.DeltaToLeader = durFromNanos(delta)
		hr.Status = race.ResultStatus(status)
		out = append(out, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate handicap results: %w", err)
	}
	if out == nil {
		out = []race.HandicapResult{}
	}
	return out, nil
}

// SeriesRaces returns the race IDs of a series in sailing order.
func (s *Store) SeriesRaces(ctx context.Context, seriesID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT race_id FROM series_races WHERE series_id = ? ORDER BY seq ASC
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query series races: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan series race: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series races: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Standings loads a series' standings ordered by rank.
func (s *Store) Standings(ctx context.Context, seriesID string) ([]race.SeriesStanding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, boat_id, races_scored, total_points, discarded_points,
		       discard_count, net_points, rank, tied, tie_breaker, provisional
		FROM standings WHERE series_id = ?
		ORDER BY rank ASC, boat_id ASC
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var out []race.SeriesStanding
	for rows.Next() {
		var st race.SeriesStanding
		if err := rows.Scan(&st.SeriesID, &st.BoatID, &st.RacesScored, &st.Total,
			&st.Discarded, &st.DiscardN, &st.Net, &st.Rank, &st.Tied,
			&st.TieBreaker, &st.Provisional); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate standings: %w", err)
	}
	if out == nil {
		out = []race.SeriesStanding{}
	}
	return out, nil
}

// Events loads a race's audit trail in time order.
func (s *Store) Events(ctx context.Context, raceID string) ([]race.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, race_id, token, at, payload
		FROM events WHERE race_id = ?
		ORDER BY at ASC, id ASC
	`, raceID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []race.Event
	for rows.Next() {
		var ev race.Event
		var kind, at, payload string
		if err := rows.Scan(&ev.ID, &kind, &ev.RaceID, &ev.Token, &at, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = race.EventKind(kind)
		if ev.At, err = decodeTime(at); err != nil {
			return nil, err
		}
		if payload != "" && payload != "{}" {
			if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload: %w", err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if out == nil {
		out = []race.Event{}
	}
	return out, nil
}
