package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitCommandError, "database not found")
	assert.Equal(t, "database not found", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	wrapped := WrapExitError(ExitFailure, "record finish", errors.New("race not started"))
	assert.Equal(t, "record finish: race not started", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))

	// Wrapping preserves the code through error chains.
	chained := fmt.Errorf("outer: %w", wrapped)
	assert.Equal(t, ExitFailure, GetExitCode(chained))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]any{"race": "r1"}, func(io.Writer) {
		t.Fatal("render must not run for json output")
	}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, map[string]any{"race": "r1"}, got["data"])
}

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success(nil, func(w io.Writer) {
		fmt.Fprintln(w, "race r1 scored")
	}))
	assert.Equal(t, "race r1 scored\n", buf.String())
}

func TestOutputFormatterFailure(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Failure(errors.New("out of sequence")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "error", got["status"])

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.Failure(errors.New("out of sequence")))
	assert.Equal(t, "error: out of sequence\n", buf.String())
}
