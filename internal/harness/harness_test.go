package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, sc))
		})
	}
}

func TestLoadScenarioValidation(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "scenario.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("missing name", func(t *testing.T) {
		_, err := LoadScenario(write(t, `
config: "regatta: {}"
schedule:
  fleets:
    - {fleet: a, race: r1}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := LoadScenario(write(t, `
name: x
schedule:
  fleets:
    - {fleet: a, race: r1}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config is required")
	})

	t.Run("no fleets", func(t *testing.T) {
		_, err := LoadScenario(write(t, `
name: x
config: "regatta: {}"
schedule:
  fleets: []
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one fleet")
	})

	t.Run("step with two actions", func(t *testing.T) {
		_, err := LoadScenario(write(t, `
name: x
config: "regatta: {}"
schedule:
  fleets:
    - {fleet: a, race: r1}
steps:
  - advance: 5m
    recall: {fleet: a}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one action")
	})

	t.Run("empty step", func(t *testing.T) {
		_, err := LoadScenario(write(t, `
name: x
config: "regatta: {}"
schedule:
  fleets:
    - {fleet: a, race: r1}
steps:
  - {}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one action")
	})

	t.Run("valid", func(t *testing.T) {
		sc, err := LoadScenario(write(t, `
name: minimal
config: "regatta: {}"
start: 2026-06-06T10:00:00Z
schedule:
  regatta: r
  day: "2026-06-06"
  template: 5-4-1-go
  interval: 5m
  first_warning: 2026-06-06T10:25:00Z
  fleets:
    - {fleet: a, race: r1}
steps:
  - advance: 5m
  - signal: {fleet: a, to: warning}
`))
		require.NoError(t, err)
		assert.Equal(t, "minimal", sc.Name)
		assert.Len(t, sc.Steps, 2)
		assert.Equal(t, time.Date(2026, 6, 6, 10, 0, 0, 0, time.UTC), sc.Start)
	})
}
