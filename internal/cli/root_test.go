package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigCUE = `
regatta: {
	id: "spring-cup"
	systems: phrf: {
		kind:   "time_on_time"
		family: "phrf"
	}
	scoring: discards: []
	limits: {}
}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regatta.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandStructure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "raceops", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{
		"validate", "schedule", "signal", "recall",
		"result", "rating", "score", "standings", "enforce",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, testConfigCUE)

	out, err := execute(t, "--config", path, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration ok")
	assert.Contains(t, out, "spring-cup")
}

func TestValidateCommandInvalidConfig(t *testing.T) {
	path := writeConfig(t, `regatta: {id: ""}`)

	out, err := execute(t, "--config", path, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error")
}

func TestScheduleCommand(t *testing.T) {
	cfg := writeConfig(t, testConfigCUE)
	db := filepath.Join(t.TempDir(), "raceops.db")

	out, err := execute(t,
		"--config", cfg, "--db", db,
		"schedule", "laser:1", "optimist:2",
		"--regatta", "spring-cup",
		"--day", "2026-06-06",
		"--first-warning", "2026-06-06T10:25:00Z",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "laser")
	assert.Contains(t, out, "optimist")
	assert.Contains(t, out, "10:25:00")
	assert.Contains(t, out, "10:30:00")
}

func TestScheduleCommandBadSlot(t *testing.T) {
	cfg := writeConfig(t, testConfigCUE)
	db := filepath.Join(t.TempDir(), "raceops.db")

	_, err := execute(t,
		"--config", cfg, "--db", db,
		"schedule", "laser",
		"--regatta", "spring-cup",
		"--day", "2026-06-06",
		"--first-warning", "2026-06-06T10:25:00Z",
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseSlot(t *testing.T) {
	fleet, num, err := parseSlot("laser:3")
	require.NoError(t, err)
	assert.Equal(t, "laser", fleet)
	assert.Equal(t, 3, num)

	_, _, err = parseSlot("laser")
	require.Error(t, err)

	_, _, err = parseSlot("laser:three")
	require.Error(t, err)
}
