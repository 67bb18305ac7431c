package handicap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saildesk/raceops/internal/race"
)

func phrf() race.HandicapSystem {
	return race.HandicapSystem{
		Name:          "phrf",
		Kind:          race.TimeOnTime,
		Family:        race.FamilyPHRF,
		LowerIsFaster: true,
	}
}

func irc() race.HandicapSystem {
	return race.HandicapSystem{
		Name:          "irc",
		Kind:          race.TimeOnTime,
		Family:        race.FamilyIRC,
		LowerIsFaster: false,
	}
}

func TestTCF(t *testing.T) {
	tests := []struct {
		name   string
		sys    race.HandicapSystem
		rating float64
		want   float64
	}{
		{"phrf default constants", phrf(), 100, 1.0},
		{"phrf scratch boat", phrf(), 0, 650.0 / 550.0},
		{"phrf slow boat", phrf(), 750, 0.5},
		{"phrf negative rating", phrf(), -50, 1.3},
		{"irc rating is the tcf", irc(), 1.050, 1.050},
		{
			"generic custom constants",
			race.HandicapSystem{
				Name: "club", Kind: race.TimeOnTime, Family: race.FamilyGeneric,
				Numerator: 600, Denominator: 500,
			},
			100, 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TCF(tt.sys, tt.rating)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestTCFRejections(t *testing.T) {
	t.Run("irc non-positive rating", func(t *testing.T) {
		_, err := TCF(irc(), 0)
		require.Error(t, err)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("phrf non-positive divisor", func(t *testing.T) {
		_, err := TCF(phrf(), -550)
		require.Error(t, err)
		var ce *CalcError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, ErrCodeInvalidConfiguration, ce.Code)
	})

	t.Run("unknown family", func(t *testing.T) {
		sys := phrf()
		sys.Family = "orc"
		_, err := TCF(sys, 100)
		require.Error(t, err)
	})
}

func TestCorrectedTimeOnTime(t *testing.T) {
	// TCF 0.5 halves the elapsed time exactly.
	corrected, tcf, err := Corrected(phrf(), 750, 4800*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, tcf)
	assert.Equal(t, 2400*time.Second, corrected)

	// IRC 1.050 on a one-hour elapsed.
	corrected, tcf, err = Corrected(irc(), 1.050, time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.050, tcf)
	assert.Equal(t, 3780*time.Second, corrected)
}

func TestCorrectedTimeOnDistance(t *testing.T) {
	sys := race.HandicapSystem{
		Name:          "phrf-tod",
		Kind:          race.TimeOnDistance,
		Family:        race.FamilyPHRF,
		LowerIsFaster: true,
	}

	// 7200s elapsed minus 2 NM x 100 s/NM allowance.
	distance := 2.0
	corrected, coeff, err := Corrected(sys, 100, 7200*time.Second, &distance)
	require.NoError(t, err)
	assert.Equal(t, 100.0, coeff)
	assert.Equal(t, 7000*time.Second, corrected)

	// A long course with a small allowance lands on the same corrected time.
	distance = 10.0
	corrected, coeff, err = Corrected(sys, 20, 7200*time.Second, &distance)
	require.NoError(t, err)
	assert.Equal(t, 20.0, coeff)
	assert.Equal(t, 7000*time.Second, corrected)

	// Time-on-distance without a course distance is a hard rejection.
	_, _, err = Corrected(sys, 100, 7200*time.Second, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestCorrectedUnknownKind(t *testing.T) {
	sys := phrf()
	sys.Kind = "time_on_vibes"
	_, _, err := Corrected(sys, 100, time.Hour, nil)
	require.Error(t, err)
	var ce *CalcError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeInvalidConfiguration, ce.Code)
}
