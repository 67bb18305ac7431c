package harness

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines one race-day conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden file is stored
	// under testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is inline CUE regatta configuration.
	Config string `yaml:"config"`

	// Start is the fake clock's initial instant (RFC 3339).
	Start time.Time `yaml:"start"`

	// Schedule describes the race day's start schedule.
	Schedule ScheduleDef `yaml:"schedule"`

	// Series optionally scores the day's races as a series after all
	// steps have run.
	Series *SeriesDef `yaml:"series,omitempty"`

	// Steps is the main flow, executed in order.
	Steps []Step `yaml:"steps"`
}

// ScheduleDef is the scenario's start schedule.
type ScheduleDef struct {
	Regatta      string     `yaml:"regatta"`
	Day          string     `yaml:"day"`
	Template     string     `yaml:"template"`
	Interval     string     `yaml:"interval"`
	FirstWarning time.Time  `yaml:"first_warning"`
	Fleets       []FleetDef `yaml:"fleets"`
}

// FleetDef is one fleet slot in start order.
type FleetDef struct {
	Fleet      string   `yaml:"fleet"`
	Race       string   `yaml:"race"`
	RaceNumber int      `yaml:"race_number"`
	DistanceNM *float64 `yaml:"distance_nm,omitempty"`
}

// SeriesDef scores races as a series at the end of the scenario.
type SeriesDef struct {
	ID     string   `yaml:"id"`
	System string   `yaml:"system"`
	Races  []string `yaml:"races"`
}

// Step is one scenario action. Exactly one field must be set.
type Step struct {
	// Advance moves the fake clock forward by a Go duration.
	Advance string `yaml:"advance,omitempty"`

	Signal *SignalStep `yaml:"signal,omitempty"`
	Recall *RecallStep `yaml:"recall,omitempty"`
	Finish *FinishStep `yaml:"finish,omitempty"`
	Status *StatusStep `yaml:"status,omitempty"`
	Rating *RatingStep `yaml:"rating,omitempty"`
	Check  *CheckStep  `yaml:"check,omitempty"`
}

// SignalStep records a start-sequence signal at the current clock time.
type SignalStep struct {
	Fleet string `yaml:"fleet"`
	To    string `yaml:"to"`
}

// RecallStep performs a general recall.
type RecallStep struct {
	Fleet string `yaml:"fleet"`
}

// FinishStep records a finish at the current clock time.
type FinishStep struct {
	Race string `yaml:"race"`
	Boat string `yaml:"boat"`
}

// StatusStep records a non-finishing status.
type StatusStep struct {
	Race string `yaml:"race"`
	Boat string `yaml:"boat"`
	Code string `yaml:"code"`
}

// RatingStep applies a rating certificate.
type RatingStep struct {
	Boat   string  `yaml:"boat"`
	System string  `yaml:"system"`
	Value  float64 `yaml:"value"`
}

// CheckStep runs one deadline check at the current clock time.
type CheckStep struct {
	Race string `yaml:"race"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if sc.Config == "" {
		return nil, fmt.Errorf("scenario %s: config is required", path)
	}
	if len(sc.Schedule.Fleets) == 0 {
		return nil, fmt.Errorf("scenario %s: schedule needs at least one fleet", path)
	}
	for i, st := range sc.Steps {
		if n := countSet(st); n != 1 {
			return nil, fmt.Errorf("scenario %s: step %d must set exactly one action, has %d", path, i+1, n)
		}
	}
	return &sc, nil
}

func countSet(st Step) int {
	n := 0
	if st.Advance != "" {
		n++
	}
	for _, set := range []bool{
		st.Signal != nil, st.Recall != nil, st.Finish != nil,
		st.Status != nil, st.Rating != nil, st.Check != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
