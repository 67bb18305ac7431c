package startline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saildesk/raceops/internal/race"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to race.StartStatus
		want     bool
	}{
		{race.StartPending, race.StartWarning, true},
		{race.StartPending, race.StartPreparatory, false},
		{race.StartPending, race.StartPostponed, true},
		{race.StartWarning, race.StartPreparatory, true},
		// 5-1-go has no preparatory signal.
		{race.StartWarning, race.StartOneMinute, true},
		{race.StartWarning, race.StartStarted, false},
		{race.StartPreparatory, race.StartOneMinute, true},
		{race.StartPreparatory, race.StartStarted, false},
		{race.StartOneMinute, race.StartStarted, true},
		{race.StartOneMinute, race.StartAbandoned, true},
		{race.StartStarted, race.StartWarning, false},
		{race.StartPostponed, race.StartWarning, false},
		{race.StartAbandoned, race.StartStarted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionRecordsActualTimes(t *testing.T) {
	warning := time.Date(2026, 6, 6, 10, 25, 0, 0, time.UTC)
	prep := warning.Add(time.Minute)
	start := warning.Add(5 * time.Minute)
	e := race.FleetStartEntry{
		FleetID:        "alpha",
		Status:         race.StartPending,
		PlannedWarning: warning,
		PlannedPrep:    &prep,
		PlannedStart:   start,
	}

	require.NoError(t, Transition(&e, race.StartWarning, warning.Add(30*time.Second)))
	require.NotNil(t, e.ActualWarning)
	assert.Equal(t, warning.Add(30*time.Second), *e.ActualWarning)

	require.NoError(t, Transition(&e, race.StartPreparatory, prep.Add(30*time.Second)))
	require.NotNil(t, e.ActualPrep)
	assert.Equal(t, prep.Add(30*time.Second), *e.ActualPrep)

	require.NoError(t, Transition(&e, race.StartOneMinute, start.Add(-time.Minute)))
	require.NoError(t, Transition(&e, race.StartStarted, start))
	require.NotNil(t, e.ActualStart)
	assert.Equal(t, start, *e.ActualStart)
	assert.Equal(t, race.StartStarted, e.Status)
}

func TestTransitionZeroTimeFallsBackToPlanned(t *testing.T) {
	warning := time.Date(2026, 6, 6, 10, 25, 0, 0, time.UTC)
	e := race.FleetStartEntry{
		Status:         race.StartPending,
		PlannedWarning: warning,
	}

	require.NoError(t, Transition(&e, race.StartWarning, time.Time{}))
	require.NotNil(t, e.ActualWarning)
	assert.Equal(t, warning, *e.ActualWarning)
}

func TestTransitionRejectsIllegalSignal(t *testing.T) {
	e := race.FleetStartEntry{Status: race.StartPending}
	err := Transition(&e, race.StartStarted, time.Now())
	require.Error(t, err)
	assert.True(t, IsOutOfSequence(err))
	// A rejected transition leaves the entry untouched.
	assert.Equal(t, race.StartPending, e.Status)
	assert.Nil(t, e.ActualStart)
}
