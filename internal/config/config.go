package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/saildesk/raceops/internal/race"
	"github.com/saildesk/raceops/internal/scoring"
)

//go:embed schema.cue
var schemaCUE string

// LoadError is a configuration load failure. Configuration errors are the
// one hard-failure class in this engine, so they carry file positions.
type LoadError struct {
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("INVALID_CONFIGURATION: %s: %s", e.Path, e.Message)
	}
	return "INVALID_CONFIGURATION: " + e.Message
}

// Regatta is the decoded configuration.
type Regatta struct {
	ID      string                  `json:"id"`
	Systems map[string]SystemConfig `json:"systems"`
	Scoring ScoringConfig           `json:"scoring"`
	Limits  LimitsConfig            `json:"limits"`
}

// SystemConfig is one handicap system definition.
type SystemConfig struct {
	Kind          string  `json:"kind"`
	Family        string  `json:"family"`
	Numerator     float64 `json:"numerator,omitempty"`
	Denominator   float64 `json:"denominator,omitempty"`
	LowerIsFaster bool    `json:"lower_is_faster"`
}

// System converts the config entry to domain reference data.
func (c SystemConfig) System(name string) race.HandicapSystem {
	return race.HandicapSystem{
		Name:          name,
		Kind:          race.CalcKind(c.Kind),
		Family:        race.SystemFamily(c.Family),
		Numerator:     c.Numerator,
		Denominator:   c.Denominator,
		LowerIsFaster: c.LowerIsFaster,
	}
}

// ScoringConfig is the series scoring policy.
type ScoringConfig struct {
	Discards []scoring.DiscardStep `json:"discards"`
	TieBreak string                `json:"tie_break"`
}

// Policy returns the injected discard-count function.
func (c ScoringConfig) Policy() scoring.DiscardPolicy {
	if len(c.Discards) == 0 {
		return scoring.NoDiscards
	}
	return scoring.StepDiscards(c.Discards)
}

// Breaker returns the configured tie-break strategy.
func (c ScoringConfig) Breaker() scoring.TieBreaker {
	if c.TieBreak == "countback" {
		return scoring.CountBack{}
	}
	return scoring.NoopTieBreaker{}
}

// LimitsConfig is the default time-limit configuration applied to new
// races. Durations are Go duration strings; empty means no limit.
type LimitsConfig struct {
	Race            string `json:"race,omitempty"`
	FirstMark       string `json:"first_mark,omitempty"`
	FinishingWindow string `json:"finishing_window,omitempty"`
	Enforce         bool   `json:"enforce"`
	CheckInterval   string `json:"check_interval"`
}

// TimeLimit builds a race's initial time-limit state from the defaults.
func (c LimitsConfig) TimeLimit(raceID string) (race.TimeLimit, error) {
	tl := race.TimeLimit{
		RaceID:  raceID,
		Status:  race.LimitPending,
		Enforce: c.Enforce,
	}
	var err error
	if tl.RaceLimit, err = parseLimit(c.Race, "limits.race"); err != nil {
		return race.TimeLimit{}, err
	}
	if tl.FirstMarkLimit, err = parseLimit(c.FirstMark, "limits.first_mark"); err != nil {
		return race.TimeLimit{}, err
	}
	if tl.FinishingWindow, err = parseLimit(c.FinishingWindow, "limits.finishing_window"); err != nil {
		return race.TimeLimit{}, err
	}
	return tl, nil
}

// Interval returns the checker poll interval.
func (c LimitsConfig) Interval() (time.Duration, error) {
	if c.CheckInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CheckInterval)
	if err != nil {
		return 0, &LoadError{Message: fmt.Sprintf("limits.check_interval: %v", err)}
	}
	return d, nil
}

func parseLimit(s, field string) (*time.Duration, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("%s: %v", field, err)}
	}
	if d <= 0 {
		return nil, &LoadError{Message: fmt.Sprintf("%s: limit must be positive, got %s", field, s)}
	}
	return &d, nil
}

// Load reads a regatta configuration file, unifies it with the embedded
// schema, validates it, and decodes it.
func Load(path string) (*Regatta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	return Parse(path, data)
}

// Parse compiles and validates configuration source. path is used for
// error positions only.
func Parse(path string, data []byte) (*Regatta, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The embedded schema is part of the binary; failing to compile it
		// is a programming error, not a user one.
		return nil, fmt.Errorf("internal: embedded schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return nil, &LoadError{Path: path, Message: cueerrors.Details(err, nil)}
	}

	unified := schema.Unify(user)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, &LoadError{Path: path, Message: cueerrors.Details(err, nil)}
	}

	var cfg Regatta
	if err := unified.LookupPath(cue.ParsePath("regatta")).Decode(&cfg); err != nil {
		return nil, &LoadError{Path: path, Message: cueerrors.Details(err, nil)}
	}

	for name, sys := range cfg.Systems {
		if sys.Kind == string(race.TimeOnDistance) && sys.Family == string(race.FamilyIRC) {
			return nil, &LoadError{
				Path:    path,
				Message: fmt.Sprintf("system %q: irc family is time-on-time only", name),
			}
		}
	}
	return &cfg, nil
}
