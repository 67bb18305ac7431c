package harness

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/saildesk/raceops/internal/config"
	"github.com/saildesk/raceops/internal/engine"
	"github.com/saildesk/raceops/internal/race"
	"github.com/saildesk/raceops/internal/store"
	"github.com/saildesk/raceops/internal/testutil"
)

// Snapshot is the deterministic projection of a scenario's final state.
// Randomly generated identifiers (entry IDs, event tokens) are excluded;
// everything else that matters to an observer is kept.
type Snapshot struct {
	ScenarioName string             `json:"scenario_name"`
	Entries      []EntrySnapshot    `json:"entries"`
	Races        []RaceSnapshot     `json:"races"`
	Standings    []StandingSnapshot `json:"standings,omitempty"`
}

// EntrySnapshot is one start entry's observable state.
type EntrySnapshot struct {
	Fleet          string `json:"fleet"`
	StartOrder     int    `json:"start_order"`
	Status         string `json:"status"`
	RecallCount    int    `json:"recall_count"`
	PlannedWarning string `json:"planned_warning"`
	PlannedStart   string `json:"planned_start"`
	ActualStart    string `json:"actual_start,omitempty"`
}

// RaceSnapshot is one race's limit state, corrected results, and audit
// event counts by kind.
type RaceSnapshot struct {
	RaceID    string           `json:"race_id"`
	Status    string           `json:"status"`
	Disposed  int              `json:"disposed"`
	Corrected []ResultSnapshot `json:"corrected"`
	Events    map[string]int   `json:"events"`
}

// ResultSnapshot is one corrected result.
type ResultSnapshot struct {
	Boat          string  `json:"boat"`
	Position      int     `json:"position,omitempty"`
	Tied          bool    `json:"tied,omitempty"`
	CorrectedSecs float64 `json:"corrected_secs,omitempty"`
	DeltaSecs     float64 `json:"delta_secs,omitempty"`
	Status        string  `json:"status"`
}

// StandingSnapshot is one series standing.
type StandingSnapshot struct {
	Boat        string  `json:"boat"`
	Rank        int     `json:"rank"`
	Net         float64 `json:"net"`
	Total       float64 `json:"total"`
	Discarded   float64 `json:"discarded"`
	Tied        bool    `json:"tied,omitempty"`
	Provisional bool    `json:"provisional,omitempty"`
}

// Run executes a scenario in a fresh temporary database and returns the
// final snapshot. dir hosts the scenario's database file.
func Run(sc *Scenario, dir string) (*Snapshot, error) {
	ctx := context.Background()

	cfg, err := config.Parse(sc.Name+".cue", []byte(sc.Config))
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dir, sc.Name+".db"))
	if err != nil {
		return nil, err
	}
	defer st.Close()

	clock := testutil.NewFakeClock(sc.Start)
	ops := engine.New(st, cfg, engine.WithClock(clock), engine.WithLogger(slog.Default()))

	interval, err := time.ParseDuration(sc.Schedule.Interval)
	if err != nil {
		return nil, fmt.Errorf("schedule interval: %w", err)
	}
	sched := race.StartSchedule{
		ID:           sc.Name + "-schedule",
		RegattaID:    sc.Schedule.Regatta,
		Day:          sc.Schedule.Day,
		Template:     race.SequenceTemplate(sc.Schedule.Template),
		Interval:     interval,
		FirstWarning: sc.Schedule.FirstWarning,
		Active:       true,
	}
	slots := make([]engine.FleetSlot, 0, len(sc.Schedule.Fleets))
	for i, f := range sc.Schedule.Fleets {
		num := f.RaceNumber
		if num == 0 {
			num = i + 1
		}
		slots = append(slots, engine.FleetSlot{
			FleetID:    f.Fleet,
			RaceID:     f.Race,
			RaceNumber: num,
			DistanceNM: f.DistanceNM,
		})
	}
	if _, err := ops.ScheduleDay(ctx, sched, slots); err != nil {
		return nil, err
	}

	for i, step := range sc.Steps {
		if err := runStep(ctx, ops, clock, sched.ID, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	snap := &Snapshot{ScenarioName: sc.Name}

	entries, err := ops.ScheduleEntries(ctx, sched.ID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		es := EntrySnapshot{
			Fleet:          e.FleetID,
			StartOrder:     e.StartOrder,
			Status:         string(e.Status),
			RecallCount:    e.RecallCount,
			PlannedWarning: e.PlannedWarning.UTC().Format(time.RFC3339),
			PlannedStart:   e.PlannedStart.UTC().Format(time.RFC3339),
		}
		if e.ActualStart != nil {
			es.ActualStart = e.ActualStart.UTC().Format(time.RFC3339)
		}
		snap.Entries = append(snap.Entries, es)
	}

	system := primarySystem(sc, cfg)
	for _, f := range sc.Schedule.Fleets {
		rs, err := snapshotRace(ctx, ops, st, f.Race, system)
		if err != nil {
			return nil, err
		}
		snap.Races = append(snap.Races, rs)
	}

	if sc.Series != nil {
		for i, raceID := range sc.Series.Races {
			if err := ops.AddSeriesRace(ctx, sc.Series.ID, raceID, i+1); err != nil {
				return nil, err
			}
		}
		standings, err := ops.RecomputeSeries(ctx, sc.Series.ID, sc.Series.System)
		if err != nil {
			return nil, err
		}
		for _, s := range standings {
			snap.Standings = append(snap.Standings, StandingSnapshot{
				Boat:        s.BoatID,
				Rank:        s.Rank,
				Net:         s.Net,
				Total:       s.Total,
				Discarded:   s.Discarded,
				Tied:        s.Tied,
				Provisional: s.Provisional,
			})
		}
	}

	return snap, nil
}

func runStep(ctx context.Context, ops *engine.Ops, clock *testutil.FakeClock, scheduleID string, step Step) error {
	switch {
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		clock.Advance(d)
		return nil
	case step.Signal != nil:
		_, err := ops.Signal(ctx, scheduleID, step.Signal.Fleet, race.StartStatus(step.Signal.To))
		return err
	case step.Recall != nil:
		_, err := ops.Recall(ctx, scheduleID, step.Recall.Fleet)
		return err
	case step.Finish != nil:
		return ops.RecordFinish(ctx, step.Finish.Race, step.Finish.Boat, clock.Now())
	case step.Status != nil:
		return ops.RecordStatus(ctx, step.Status.Race, step.Status.Boat, race.ResultStatus(step.Status.Code))
	case step.Rating != nil:
		return ops.ApplyRating(ctx, step.Rating.Boat, step.Rating.System, step.Rating.Value)
	case step.Check != nil:
		_, err := ops.CheckRace(ctx, step.Check.Race, clock.Now())
		return err
	default:
		return fmt.Errorf("empty step")
	}
}

func snapshotRace(ctx context.Context, ops *engine.Ops, st *store.Store, raceID, system string) (RaceSnapshot, error) {
	rs := RaceSnapshot{RaceID: raceID, Events: map[string]int{}}

	tl, err := st.TimeLimit(ctx, raceID)
	if err != nil {
		return rs, err
	}
	rs.Status = string(tl.Status)
	rs.Disposed = tl.DispositionCount

	ranked, err := ops.CorrectedResults(ctx, raceID, system)
	if err != nil {
		return rs, err
	}
	for _, hr := range ranked {
		rs.Corrected = append(rs.Corrected, ResultSnapshot{
			Boat:          hr.BoatID,
			Position:      hr.Position,
			Tied:          hr.Tied,
			CorrectedSecs: hr.Corrected.Seconds(),
			DeltaSecs:     hr.DeltaToLeader.Seconds(),
			Status:        string(hr.Status),
		})
	}

	events, err := ops.RaceAudit(ctx, raceID)
	if err != nil {
		return rs, err
	}
	for _, ev := range events {
		rs.Events[string(ev.Kind)]++
	}
	return rs, nil
}

// primarySystem picks the scenario's scoring system: the series system if
// set, else the lexically first configured one.
func primarySystem(sc *Scenario, cfg *config.Regatta) string {
	if sc.Series != nil {
		return sc.Series.System
	}
	best := ""
	for name := range cfg.Systems {
		if best == "" || name < best {
			best = name
		}
	}
	return best
}
