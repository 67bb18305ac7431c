package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario against a fresh database under t's
// temp dir and compares the final snapshot against the golden file at
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	snap, err := Run(sc, t.TempDir())
	if err != nil {
		return err
	}
	return AssertGolden(t, sc.Name, snap)
}

// AssertGolden compares an already-computed snapshot against its golden
// file. Snapshot serialization is deterministic: struct fields keep
// declaration order and encoding/json sorts map keys.
func AssertGolden(t *testing.T, name string, snap *Snapshot) error {
	t.Helper()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
