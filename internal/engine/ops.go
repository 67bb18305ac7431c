package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saildesk/raceops/internal/config"
	"github.com/saildesk/raceops/internal/handicap"
	"github.com/saildesk/raceops/internal/race"
	"github.com/saildesk/raceops/internal/startline"
	"github.com/saildesk/raceops/internal/store"
	"github.com/saildesk/raceops/internal/timelimit"
)

// Ops is the race operations engine facade. All mutations to one race's
// entries, time limit, or corrected results are serialized through that
// race's lock; see the package comment for the concurrency model.
type Ops struct {
	store *store.Store
	cfg   *config.Regatta
	clock Clock
	log   *slog.Logger

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	gens     map[string]uint64
	checkers map[string]*timelimit.Checker
}

// Option configures the engine.
type Option func(*Ops)

// WithClock injects a time source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(o *Ops) { o.clock = c }
}

// WithLogger injects a structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Ops) { o.log = l }
}

// New creates the engine over an opened store and loaded configuration.
func New(st *store.Store, cfg *config.Regatta, opts ...Option) *Ops {
	o := &Ops{
		store:    st,
		cfg:      cfg,
		clock:    SystemClock{},
		log:      slog.Default(),
		locks:    make(map[string]*sync.Mutex),
		gens:     make(map[string]uint64),
		checkers: make(map[string]*timelimit.Checker),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// raceLock returns the per-race mutex, creating it on first use.
func (o *Ops) raceLock(raceID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[raceID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[raceID] = l
	}
	return l
}

// bumpGen marks a new input edit for a race and returns the generation
// the caller's recomputation pass belongs to.
func (o *Ops) bumpGen(raceID string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gens[raceID]++
	return o.gens[raceID]
}

func (o *Ops) currentGen(raceID string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gens[raceID]
}

// FleetSlot describes one fleet's place in a new schedule, in start
// order.
type FleetSlot struct {
	FleetID          string
	RaceID           string
	RaceNumber       int
	DistanceNM       *float64
	IntervalOverride *time.Duration
}

// ScheduleDay creates a schedule with one entry per slot in the given
// order, derives all planned times, and initializes each race's time
// limit from the configured defaults.
func (o *Ops) ScheduleDay(ctx context.Context, sched race.StartSchedule, slots []FleetSlot) ([]race.FleetStartEntry, error) {
	entries := make([]race.FleetStartEntry, len(slots))
	for i, slot := range slots {
		entries[i] = race.FleetStartEntry{
			ID:               uuid.Must(uuid.NewV7()).String(),
			ScheduleID:       sched.ID,
			FleetID:          slot.FleetID,
			RaceID:           slot.RaceID,
			RaceNumber:       slot.RaceNumber,
			StartOrder:       i + 1,
			IntervalOverride: slot.IntervalOverride,
			Status:           race.StartPending,
		}
	}

	if err := startline.Recompute(&sched, entries); err != nil {
		return nil, err
	}

	if err := o.store.SaveSchedule(ctx, sched); err != nil {
		return nil, err
	}
	if err := o.store.SaveEntries(ctx, sched.ID, entries); err != nil {
		return nil, err
	}

	for _, slot := range slots {
		if err := o.store.SaveRace(ctx, slot.RaceID, slot.DistanceNM); err != nil {
			return nil, err
		}
		tl, err := o.cfg.Limits.TimeLimit(slot.RaceID)
		if err != nil {
			return nil, err
		}
		if err := o.store.SaveTimeLimit(ctx, tl); err != nil {
			return nil, err
		}
	}

	o.log.Info("schedule created", "schedule", sched.ID, "fleets", len(entries))
	return entries, nil
}

// Reschedule applies a schedule-level edit (interval, template, first
// warning) and cascades the derived times to every entry.
func (o *Ops) Reschedule(ctx context.Context, sched race.StartSchedule) ([]race.FleetStartEntry, error) {
	entries, err := o.store.Entries(ctx, sched.ID)
	if err != nil {
		return nil, err
	}
	if err := startline.Recompute(&sched, entries); err != nil {
		return nil, err
	}
	if err := o.store.SaveSchedule(ctx, sched); err != nil {
		return nil, err
	}
	if err := o.store.SaveEntries(ctx, sched.ID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Signal advances one fleet through its start sequence, recording the
// actual signal time from the engine clock.
//
// A start signal feeds the race's actual start time into time-limit
// enforcement; postponement or abandonment stops the race's deadline
// checker and halts downstream computation.
func (o *Ops) Signal(ctx context.Context, scheduleID, fleetID string, to race.StartStatus) (*race.FleetStartEntry, error) {
	entries, err := o.store.Entries(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	var entry *race.FleetStartEntry
	for i := range entries {
		if entries[i].FleetID == fleetID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return nil, &startline.SequenceError{
			Code:       startline.ErrCodeUnknownFleet,
			Message:    "fleet has no entry in schedule",
			ScheduleID: scheduleID,
			FleetID:    fleetID,
		}
	}

	now := o.clock.Now()
	if err := startline.Transition(entry, to, now); err != nil {
		return nil, err
	}
	if err := o.store.SaveEntries(ctx, scheduleID, entries); err != nil {
		return nil, err
	}

	switch to {
	case race.StartStarted:
		if err := o.markStarted(ctx, entry.RaceID, *entry.ActualStart); err != nil {
			return nil, err
		}
	case race.StartPostponed, race.StartAbandoned:
		o.StopChecker(entry.RaceID)
	}

	if err := o.audit(ctx, race.EventSignal, entry.RaceID, map[string]any{
		"fleet":  fleetID,
		"signal": string(to),
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

func (o *Ops) markStarted(ctx context.Context, raceID string, start time.Time) error {
	l := o.raceLock(raceID)
	l.Lock()
	defer l.Unlock()

	tl, err := o.store.TimeLimit(ctx, raceID)
	if errors.Is(err, store.ErrNotFound) {
		tl, err = o.cfg.Limits.TimeLimit(raceID)
	}
	if err != nil {
		return err
	}
	timelimit.SetStart(&tl, start)
	return o.store.SaveTimeLimit(ctx, tl)
}

// Recall performs a general recall: the fleet is re-queued at the back of
// the schedule, its actual times are cleared, and its race's time-limit
// state returns to pending. The recall itself is audited with the running
// recall count; no data is lost.
func (o *Ops) Recall(ctx context.Context, scheduleID, fleetID string) (*race.FleetStartEntry, error) {
	sched, err := o.store.Schedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	entries, err := o.store.Entries(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	recalled, err := startline.GeneralRecall(&sched, entries, fleetID)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveEntries(ctx, scheduleID, entries); err != nil {
		return nil, err
	}

	// The recalled race has not started any more; reset its limit state.
	l := o.raceLock(recalled.RaceID)
	l.Lock()
	tl, err := o.store.TimeLimit(ctx, recalled.RaceID)
	if err == nil {
		tl.StartTime = nil
		tl.FirstFinishTime = nil
		tl.Status = race.LimitPending
		timelimit.Recompute(&tl)
		err = o.store.SaveTimeLimit(ctx, tl)
	} else if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	l.Unlock()
	if err != nil {
		return nil, err
	}

	if err := o.audit(ctx, race.EventRecall, recalled.RaceID, map[string]any{
		"fleet":        fleetID,
		"recall_count": recalled.RecallCount,
		"new_order":    recalled.StartOrder,
	}); err != nil {
		return nil, err
	}

	o.log.Info("general recall", "schedule", scheduleID, "fleet", fleetID,
		"recalls", recalled.RecallCount, "new_order", recalled.StartOrder)
	return recalled, nil
}

// RecordFinish records a boat's finish, derives its elapsed time from the
// race's actual start, opens the finishing window on the first finish,
// and recomputes the race's corrected results.
func (o *Ops) RecordFinish(ctx context.Context, raceID, boatID string, finish time.Time) error {
	l := o.raceLock(raceID)
	l.Lock()
	defer l.Unlock()
	gen := o.bumpGen(raceID)

	tl, err := o.store.TimeLimit(ctx, raceID)
	if err != nil {
		return err
	}
	if tl.StartTime == nil {
		return &OpsError{
			Code:    ErrCodeOutOfSequence,
			Message: "finish recorded before the race started",
			RaceID:  raceID,
		}
	}

	elapsed := finish.Sub(*tl.StartTime)
	if elapsed <= 0 {
		return &OpsError{
			Code:    ErrCodeOutOfSequence,
			Message: fmt.Sprintf("finish at %s precedes start at %s", finish, *tl.StartTime),
			RaceID:  raceID,
		}
	}

	res := race.RaceResult{
		RaceID:     raceID,
		BoatID:     boatID,
		FinishTime: &finish,
		Elapsed:    &elapsed,
		Status:     race.StatusFinished,
	}
	if err := o.store.SaveResult(ctx, res); err != nil {
		return err
	}

	timelimit.SetFirstFinish(&tl, finish)
	if err := o.store.SaveTimeLimit(ctx, tl); err != nil {
		return err
	}

	return o.recomputeLocked(ctx, raceID, gen)
}

// RecordStatus records a non-finishing outcome (retired, disqualified,
// OCS, ...) and recomputes the race's corrected results.
func (o *Ops) RecordStatus(ctx context.Context, raceID, boatID string, status race.ResultStatus) error {
	if status.Finished() {
		return &OpsError{
			Code:    ErrCodeOutOfSequence,
			Message: "use RecordFinish for finishing boats",
			RaceID:  raceID,
		}
	}
	l := o.raceLock(raceID)
	l.Lock()
	defer l.Unlock()
	gen := o.bumpGen(raceID)

	res := race.RaceResult{RaceID: raceID, BoatID: boatID, Status: status}
	if err := o.store.SaveResult(ctx, res); err != nil {
		return err
	}
	return o.recomputeLocked(ctx, raceID, gen)
}

// ApplyRating applies a new rating certificate and recomputes every race
// the boat has a result in. The prior certificate stays in the store for
// audit.
func (o *Ops) ApplyRating(ctx context.Context, boatID, system string, rating float64) error {
	sysCfg, ok := o.cfg.Systems[system]
	if !ok {
		return &OpsError{
			Code:    ErrCodeInvalidConfiguration,
			Message: "unknown handicap system " + system,
		}
	}
	sys := sysCfg.System(system)

	coeff := rating
	if sys.Kind == race.TimeOnTime {
		var err error
		if coeff, err = handicap.TCF(sys, rating); err != nil {
			return err
		}
	}

	now := o.clock.Now()
	cert := race.BoatRating{
		BoatID:   boatID,
		System:   system,
		Rating:   rating,
		TCF:      coeff,
		IssuedAt: now,
	}
	if err := o.store.SaveRating(ctx, cert); err != nil {
		return err
	}

	races, err := o.store.BoatRaces(ctx, boatID)
	if err != nil {
		return err
	}
	for _, raceID := range races {
		if err := o.RecomputeRace(ctx, raceID); err != nil && !IsStale(err) {
			return err
		}
		if err := o.audit(ctx, race.EventRatingChange, raceID, map[string]any{
			"boat":   boatID,
			"system": system,
			// Stored as a string: the audit canonical form forbids floats.
			"rating": fmt.Sprintf("%g", rating),
		}); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeRace recomputes all derived corrected results for a race under
// every configured system. Safe to call at any time; it is idempotent.
func (o *Ops) RecomputeRace(ctx context.Context, raceID string) error {
	l := o.raceLock(raceID)
	l.Lock()
	defer l.Unlock()
	return o.recomputeLocked(ctx, raceID, o.bumpGen(raceID))
}

// recomputeLocked runs one recomputation pass. The caller holds the race
// lock. A pass whose generation was superseded by a newer edit discards
// itself: the newer edit's own pass produces the current output.
func (o *Ops) recomputeLocked(ctx context.Context, raceID string, gen uint64) error {
	if cur := o.currentGen(raceID); cur != gen {
		o.log.Debug("recompute superseded", "race", raceID, "gen", gen, "current", cur)
		return &OpsError{
			Code:    ErrCodeStaleRecomputation,
			Message: fmt.Sprintf("pass %d superseded by %d", gen, cur),
			RaceID:  raceID,
		}
	}

	results, err := o.store.Results(ctx, raceID)
	if err != nil {
		return err
	}
	distance, err := o.store.RaceDistance(ctx, raceID)
	if err != nil {
		return err
	}

	for name, sysCfg := range o.cfg.Systems {
		sys := sysCfg.System(name)

		entries := make([]handicap.Entry, 0, len(results))
		for _, r := range results {
			entry := handicap.Entry{BoatID: r.BoatID, Elapsed: r.Elapsed, Status: r.Status}
			if r.Status.Finished() {
				cert, err := o.store.CurrentRating(ctx, r.BoatID, name)
				if errors.Is(err, store.ErrNotFound) {
					// A finisher without a certificate cannot be corrected
					// under this system; leave it out of this system's
					// ranking rather than inventing a rating.
					o.log.Warn("no rating certificate", "race", raceID, "boat", r.BoatID, "system", name)
					continue
				}
				if err != nil {
					return err
				}
				entry.Rating = cert.Rating
			}
			entries = append(entries, entry)
		}

		ranked, err := handicap.Rank(sys, raceID, entries, distance)
		if err != nil {
			return err
		}
		if err := o.store.ReplaceHandicapResults(ctx, raceID, name, ranked); err != nil {
			return err
		}
	}

	return o.audit(ctx, race.EventRecompute, raceID, map[string]any{
		"boats":   len(results),
		"systems": len(o.cfg.Systems),
	})
}

// audit appends one event with a fresh operation token.
func (o *Ops) audit(ctx context.Context, kind race.EventKind, raceID string, payload map[string]any) error {
	ev, err := race.NewEvent(kind, raceID, uuid.Must(uuid.NewV7()).String(), o.clock.Now(), payload)
	if err != nil {
		return err
	}
	return o.store.WriteEvent(ctx, ev)
}
