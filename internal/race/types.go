package race

import "time"

// SequenceTemplate names a fixed start-signal timing pattern.
type SequenceTemplate string

const (
	// Template541 is the RRS 26 pattern: warning at T, preparatory at
	// T+1min, start at T+5min.
	Template541 SequenceTemplate = "5-4-1-go"
	// Template321 is the short pattern: preparatory at T+1min, start at
	// T+3min.
	Template321 SequenceTemplate = "3-2-1-go"
	// Template51 has no preparatory signal; start at T+5min.
	Template51 SequenceTemplate = "5-1-go"
	// TemplateCustom uses the schedule's own warning/prep offsets.
	TemplateCustom SequenceTemplate = "custom"
)

// StartSchedule is one ordered sequence of fleet starts for a race day.
// Exactly one schedule per (regatta, day) is active at a time; the store
// enforces that with a partial unique index.
type StartSchedule struct {
	ID        string `json:"id"`
	RegattaID string `json:"regatta_id"`
	// Day is the race day in ISO date form (2026-08-30).
	Day      string           `json:"day"`
	Template SequenceTemplate `json:"template"`

	// WarningOffset and PrepOffset apply only to TemplateCustom. Both are
	// counted back from the start signal: the warning is made WarningOffset
	// before the start, the preparatory PrepOffset before the start, so the
	// preparatory falls WarningOffset−PrepOffset after the warning. A zero
	// PrepOffset means no preparatory signal.
	WarningOffset time.Duration `json:"warning_offset,omitempty"`
	PrepOffset    time.Duration `json:"prep_offset,omitempty"`

	// Interval is the default gap between consecutive fleet warnings.
	Interval time.Duration `json:"interval"`
	// FirstWarning anchors the whole sequence: the entry at start_order 1
	// takes this warning time.
	FirstWarning time.Time `json:"first_warning"`
	Active       bool      `json:"active"`
}

// FleetStartEntry is one fleet's position in a start schedule.
//
// StartOrder values within a schedule form a contiguous permutation of
// 1..N at all times; startline.GeneralRecall preserves that by moving the
// recalled entry to N and closing the gap behind it.
type FleetStartEntry struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	FleetID    string `json:"fleet_id"`
	RaceID     string `json:"race_id"`
	RaceNumber int    `json:"race_number"`
	StartOrder int    `json:"start_order"`

	// IntervalOverride replaces the schedule default for the gap between
	// this entry's warning and the previous entry's warning.
	IntervalOverride *time.Duration `json:"interval_override,omitempty"`

	// Planned times are derived from StartOrder and the schedule
	// configuration; recomputing them is idempotent. PlannedPrep is nil for
	// templates without a preparatory signal.
	PlannedWarning time.Time  `json:"planned_warning"`
	PlannedPrep    *time.Time `json:"planned_prep,omitempty"`
	PlannedStart   time.Time  `json:"planned_start"`

	// Actual times are recorded as signals are made and cleared on a
	// general recall.
	ActualWarning *time.Time `json:"actual_warning,omitempty"`
	ActualPrep    *time.Time `json:"actual_prep,omitempty"`
	ActualStart   *time.Time `json:"actual_start,omitempty"`

	Status      StartStatus `json:"status"`
	RecallCount int         `json:"recall_count"`
}

// TimeLimit is one race's enforcement configuration and live state.
// Each limit is independently nil meaning "no limit". Deadlines are
// derived from the actual start and first-finish times on every relevant
// timestamp write.
type TimeLimit struct {
	RaceID string `json:"race_id"`

	RaceLimit       *time.Duration `json:"race_limit,omitempty"`
	FirstMarkLimit  *time.Duration `json:"first_mark_limit,omitempty"`
	FinishingWindow *time.Duration `json:"finishing_window,omitempty"`

	StartTime       *time.Time `json:"start_time,omitempty"`
	FirstFinishTime *time.Time `json:"first_finish_time,omitempty"`

	RaceDeadline      *time.Time `json:"race_deadline,omitempty"`
	FirstMarkDeadline *time.Time `json:"first_mark_deadline,omitempty"`
	FinishingDeadline *time.Time `json:"finishing_deadline,omitempty"`

	Status LimitStatus `json:"status"`

	// Enforce gates auto-disposition. When false the deadlines are still
	// computed and exposed but results are never mutated.
	Enforce bool `json:"enforce"`

	// DispositionCount records how many boats the last auto-disposition
	// affected, for audit.
	DispositionCount int `json:"disposition_count"`
}

// CalcKind selects the handicap correction formula.
type CalcKind string

const (
	// TimeOnTime scores corrected = elapsed × TCF.
	TimeOnTime CalcKind = "time_on_time"
	// TimeOnDistance scores corrected = elapsed − distance × rating.
	TimeOnDistance CalcKind = "time_on_distance"
)

// SystemFamily selects how a time-on-time system derives its TCF.
type SystemFamily string

const (
	// FamilyPHRF uses TCF = numerator / (denominator + rating).
	FamilyPHRF SystemFamily = "phrf"
	// FamilyIRC treats the stored rating as the TCF directly.
	FamilyIRC SystemFamily = "irc"
	// FamilyGeneric uses the system's own numerator/denominator constants.
	FamilyGeneric SystemFamily = "generic"
)

// HandicapSystem is immutable reference data describing a rating scheme.
type HandicapSystem struct {
	Name   string       `json:"name"`
	Kind   CalcKind     `json:"kind"`
	Family SystemFamily `json:"family"`

	// Numerator and Denominator are the TCF constants for PHRF-family and
	// generic systems. Zero values fall back to the classic 650/550.
	Numerator   float64 `json:"numerator,omitempty"`
	Denominator float64 `json:"denominator,omitempty"`

	// LowerIsFaster reports whether a lower rating means a faster boat.
	LowerIsFaster bool `json:"lower_is_faster"`
}

// BoatRating is one boat's rating under one system. A new certificate
// supersedes the previous row; the store retains prior rows for audit.
type BoatRating struct {
	BoatID string  `json:"boat_id"`
	System string  `json:"system"`
	Rating float64 `json:"rating"`
	// TCF is the derived correction coefficient, recomputed whenever the
	// rating or the system constants change.
	TCF      float64   `json:"tcf"`
	IssuedAt time.Time `json:"issued_at"`
}

// RaceResult is one boat's raw outcome for one race: finish time, elapsed
// time, and status. Immutable once finalized except through an audited
// correction.
type RaceResult struct {
	RaceID string `json:"race_id"`
	BoatID string `json:"boat_id"`

	FinishTime *time.Time     `json:"finish_time,omitempty"`
	Elapsed    *time.Duration `json:"elapsed,omitempty"`

	Status    ResultStatus `json:"status"`
	Finalized bool         `json:"finalized"`
}

// HandicapResult is the derived corrected outcome for one boat in one race
// under one system. Never hand-edited; recomputed whenever the rating,
// elapsed time, or system constants change.
type HandicapResult struct {
	RaceID string `json:"race_id"`
	BoatID string `json:"boat_id"`
	System string `json:"system"`

	TCF       float64       `json:"tcf,omitempty"`
	Corrected time.Duration `json:"corrected,omitempty"`
	// Position is the 1-based rank by ascending corrected time among
	// finishers; zero for non-finishers, which carry their status instead.
	Position int `json:"position,omitempty"`
	// Tied reports an exact corrected-time tie. Breaking it is deferred to
	// race-specific rules; tied boats share a position.
	Tied bool `json:"tied,omitempty"`
	// DeltaToLeader is the corrected-time margin to the race leader.
	DeltaToLeader time.Duration `json:"delta_to_leader,omitempty"`

	Status ResultStatus `json:"status"`
}

// SeriesStanding is one boat's aggregate rank across a series. The scoring
// aggregator exclusively owns these rows.
type SeriesStanding struct {
	SeriesID string `json:"series_id"`
	BoatID   string `json:"boat_id"`

	RacesScored int     `json:"races_scored"`
	Total       float64 `json:"total_points"`
	Discarded   float64 `json:"discarded_points"`
	DiscardN    int     `json:"discard_count"`
	Net         float64 `json:"net_points"`

	Rank int  `json:"rank"`
	Tied bool `json:"tied"`
	// TieBreaker names the strategy consulted for a detected tie ("none"
	// when ties are left in stable input order).
	TieBreaker string `json:"tie_breaker,omitempty"`

	// Provisional marks a standing computed from an incomplete score list.
	Provisional bool `json:"provisional"`
}
