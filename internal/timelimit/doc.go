// Package timelimit converts a race's actual start time into enforcement
// deadlines and drives the per-race time-limit state machine.
//
// Deadlines are recomputed on every relevant timestamp write (push-based),
// and Check is a level-triggered comparison against the injected clock:
// a missed poll tick still resolves correctly on the next check, so clock
// skew between the poller and wall-clock deadlines is tolerated.
//
// Enforcement is advisory unless TimeLimit.Enforce is set; with it off the
// deadlines and time-remaining are still computed and exposed but results
// are never mutated. AutoDisposition is bulk and idempotent: running it
// twice never double-counts or re-flags already-dispositioned boats.
package timelimit
