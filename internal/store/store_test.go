package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saildesk/raceops/internal/race"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func timePtr(t time.Time) *time.Time { return &t }

func durPtr(d time.Duration) *time.Duration { return &d }

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestScheduleRoundtrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	sched := race.StartSchedule{
		ID:           "sched-1",
		RegattaID:    "spring-cup",
		Day:          "2026-06-06",
		Template:     race.Template541,
		Interval:     5 * time.Minute,
		FirstWarning: time.Date(2026, 6, 6, 10, 25, 0, 0, time.UTC),
		Active:       true,
	}
	require.NoError(t, s.SaveSchedule(ctx, sched))

	got, err := s.Schedule(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, sched, got)

	active, err := s.ActiveSchedule(ctx, "spring-cup", "2026-06-06")
	require.NoError(t, err)
	assert.Equal(t, sched.ID, active.ID)

	_, err = s.Schedule(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOneActiveSchedulePerDay(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := race.StartSchedule{
		RegattaID:    "spring-cup",
		Day:          "2026-06-06",
		Template:     race.Template541,
		Interval:     5 * time.Minute,
		FirstWarning: time.Date(2026, 6, 6, 10, 25, 0, 0, time.UTC),
		Active:       true,
	}

	first := base
	first.ID = "sched-1"
	require.NoError(t, s.SaveSchedule(ctx, first))

	second := base
	second.ID = "sched-2"
	err := s.SaveSchedule(ctx, second)
	require.Error(t, err, "partial unique index forbids two active schedules for a day")

	// Deactivating the first makes room.
	first.Active = false
	require.NoError(t, s.SaveSchedule(ctx, first))
	require.NoError(t, s.SaveSchedule(ctx, second))
}

func TestEntriesRoundtrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	sched := race.StartSchedule{
		ID:           "sched-1",
		RegattaID:    "spring-cup",
		Day:          "2026-06-06",
		Template:     race.Template541,
		Interval:     5 * time.Minute,
		FirstWarning: time.Date(2026, 6, 6, 10, 25, 0, 0, time.UTC),
		Active:       true,
	}
	require.NoError(t, s.SaveSchedule(ctx, sched))

	warning := time.Date(2026, 6, 6, 10, 25, 0, 0, time.UTC)
	entries := []race.FleetStartEntry{
		{
			ID: "e2", ScheduleID: "sched-1", FleetID: "duo", RaceID: "r2",
			RaceNumber: 2, StartOrder: 2,
			IntervalOverride: durPtr(10 * time.Minute),
			PlannedWarning:   warning.Add(10 * time.Minute),
			PlannedStart:     warning.Add(15 * time.Minute),
			Status:           race.StartPending,
		},
		{
			ID: "e1", ScheduleID: "sched-1", FleetID: "solo", RaceID: "r1",
			RaceNumber: 1, StartOrder: 1,
			PlannedWarning: warning,
			PlannedPrep:    timePtr(warning.Add(time.Minute)),
			PlannedStart:   warning.Add(5 * time.Minute),
			ActualWarning:  timePtr(warning.Add(10 * time.Second)),
			Status:         race.StartWarning,
			RecallCount:    1,
		},
	}
	require.NoError(t, s.SaveEntries(ctx, "sched-1", entries))

	got, err := s.Entries(ctx, "sched-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by start_order regardless of save order.
	assert.Equal(t, entries[1], got[0])
	assert.Equal(t, entries[0], got[1])

	// Re-saving replaces the set.
	require.NoError(t, s.SaveEntries(ctx, "sched-1", entries[:1]))
	got, err = s.Entries(ctx, "sched-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "duo", got[0].FleetID)
}

func TestTimeLimitRoundtrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 6, 6, 10, 30, 0, 0, time.UTC)
	tl := race.TimeLimit{
		RaceID:          "r1",
		RaceLimit:       durPtr(90 * time.Minute),
		FinishingWindow: durPtr(30 * time.Minute),
		StartTime:       timePtr(start),
		RaceDeadline:    timePtr(start.Add(90 * time.Minute)),
		Status:          race.LimitRacing,
		Enforce:         true,
	}
	require.NoError(t, s.SaveTimeLimit(ctx, tl))

	got, err := s.TimeLimit(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, tl, got)

	// Upsert replaces in place.
	tl.Status = race.LimitCompleted
	tl.DispositionCount = 3
	require.NoError(t, s.SaveTimeLimit(ctx, tl))
	got, err = s.TimeLimit(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, race.LimitCompleted, got.Status)
	assert.Equal(t, 3, got.DispositionCount)

	_, err = s.TimeLimit(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentRatingIsNewest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRating(ctx, race.BoatRating{
		BoatID: "alpha", System: "phrf", Rating: 120, TCF: 650.0 / 670.0, IssuedAt: issued,
	}))
	require.NoError(t, s.SaveRating(ctx, race.BoatRating{
		BoatID: "alpha", System: "phrf", Rating: 100, TCF: 1.0, IssuedAt: issued.AddDate(0, 6, 0),
	}))
	require.NoError(t, s.SaveRating(ctx, race.BoatRating{
		BoatID: "alpha", System: "irc", Rating: 1.05, TCF: 1.05, IssuedAt: issued.AddDate(1, 0, 0),
	}))

	got, err := s.CurrentRating(ctx, "alpha", "phrf")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Rating, "the newer certificate supersedes")

	// The superseded row is retained for audit.
	got, err = s.CurrentRating(ctx, "alpha", "irc")
	require.NoError(t, err)
	assert.Equal(t, 1.05, got.Rating)

	_, err = s.CurrentRating(ctx, "alpha", "orc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultsRoundtrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRace(ctx, "r1", nil))

	finish := time.Date(2026, 6, 6, 11, 30, 0, 0, time.UTC)
	results := []race.RaceResult{
		{RaceID: "r1", BoatID: "alpha", FinishTime: timePtr(finish), Elapsed: durPtr(time.Hour), Status: race.StatusFinished},
		{RaceID: "r1", BoatID: "bravo", Status: race.StatusRacing},
	}
	require.NoError(t, s.SaveResults(ctx, results))

	got, err := s.Results(ctx, "r1")
	require.NoError(t, err)
	assert.ElementsMatch(t, results, got)

	// Upsert by (race, boat).
	results[1].Status = race.StatusDNF
	require.NoError(t, s.SaveResult(ctx, results[1]))
	got, err = s.Results(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	races, err := s.BoatRaces(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, races)
}

func TestRaceDistance(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	d := 12.5
	require.NoError(t, s.SaveRace(ctx, "r1", &d))
	require.NoError(t, s.SaveRace(ctx, "r2", nil))

	got, err := s.RaceDistance(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12.5, *got)

	got, err = s.RaceDistance(ctx, "r2")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.RaceDistance(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReplaceHandicapResultsIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := []race.HandicapResult{
		{RaceID: "r1", BoatID: "alpha", System: "phrf", TCF: 1.0, Corrected: time.Hour, Position: 1, Status: race.StatusFinished},
		{RaceID: "r1", BoatID: "bravo", System: "phrf", TCF: 0.5, Corrected: 2 * time.Hour, Position: 2, DeltaToLeader: time.Hour, Status: race.StatusFinished},
	}
	require.NoError(t, s.ReplaceHandicapResults(ctx, "r1", "phrf", first))

	// A different system's set is independent.
	other := []race.HandicapResult{
		{RaceID: "r1", BoatID: "alpha", System: "irc", TCF: 1.05, Corrected: time.Hour, Position: 1, Status: race.StatusFinished},
	}
	require.NoError(t, s.ReplaceHandicapResults(ctx, "r1", "irc", other))

	second := []race.HandicapResult{
		{RaceID: "r1", BoatID: "bravo", System: "phrf", TCF: 0.5, Corrected: time.Hour, Position: 1, Status: race.StatusFinished},
	}
	require.NoError(t, s.ReplaceHandicapResults(ctx, "r1", "phrf", second))

	got, err := s.HandicapResults(ctx, "r1", "phrf")
	require.NoError(t, err)
	assert.Equal(t, second, got, "replacement fully supersedes the prior set")

	got, err = s.HandicapResults(ctx, "r1", "irc")
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestHandicapResultsOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	set := []race.HandicapResult{
		{RaceID: "r1", BoatID: "zulu", System: "phrf", Status: race.StatusDNF},
		{RaceID: "r1", BoatID: "bravo", System: "phrf", Position: 2, Status: race.StatusFinished},
		{RaceID: "r1", BoatID: "alpha", System: "phrf", Position: 1, Status: race.StatusFinished},
	}
	require.NoError(t, s.ReplaceHandicapResults(ctx, "r1", "phrf", set))

	got, err := s.HandicapResults(ctx, "r1", "phrf")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].BoatID)
	assert.Equal(t, "bravo", got[1].BoatID)
	assert.Equal(t, "zulu", got[2].BoatID, "non-finishers sort after ranked boats")
}

func TestStandingsRoundtrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	standings := []race.SeriesStanding{
		{SeriesID: "s1", BoatID: "alpha", RacesScored: 2, Total: 5, Net: 5, Rank: 2},
		{SeriesID: "s1", BoatID: "bravo", RacesScored: 2, Total: 4, Net: 4, Rank: 1, Tied: true, TieBreaker: "none"},
	}
	require.NoError(t, s.ReplaceStandings(ctx, "s1", standings))

	got, err := s.Standings(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bravo", got[0].BoatID, "ordered by rank")
	assert.True(t, got[0].Tied)

	require.NoError(t, s.ReplaceStandings(ctx, "s1", standings[:1]))
	got, err = s.Standings(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSeriesRacesOrdered(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddSeriesRace(ctx, "s1", "r2", 2))
	require.NoError(t, s.AddSeriesRace(ctx, "s1", "r1", 1))
	require.NoError(t, s.AddSeriesRace(ctx, "s1", "r3", 3))

	got, err := s.SeriesRaces(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, got)
}

func TestWriteEventIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 6, 6, 10, 30, 0, 0, time.UTC)
	ev, err := race.NewEvent(race.EventRecall, "r1", "tok-1", at, map[string]any{"fleet": "solo"})
	require.NoError(t, err)

	require.NoError(t, s.WriteEvent(ctx, ev))
	// Same content-addressed ID: the second write is a no-op.
	require.NoError(t, s.WriteEvent(ctx, ev))

	events, err := s.Events(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
	assert.Equal(t, race.EventRecall, events[0].Kind)
	assert.Equal(t, map[string]any{"fleet": "solo"}, events[0].Payload)
}

func TestEventsOrderedByTime(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 6, 6, 10, 30, 0, 0, time.UTC)
	for i, kind := range []race.EventKind{race.EventSignal, race.EventRecall, race.EventRecompute} {
		ev, err := race.NewEvent(kind, "r1", "tok", at.Add(time.Duration(i)*time.Minute), nil)
		require.NoError(t, err)
		require.NoError(t, s.WriteEvent(ctx, ev))
	}

	events, err := s.Events(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, race.EventSignal, events[0].Kind)
	assert.Equal(t, race.EventRecall, events[1].Kind)
	assert.Equal(t, race.EventRecompute, events[2].Kind)
}
