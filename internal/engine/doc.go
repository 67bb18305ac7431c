// Package engine orchestrates the race operations pipeline: start
// scheduling feeds actual start times to time-limit enforcement and
// elapsed-time computation, corrected results feed series scoring.
//
// ARCHITECTURE:
//
// The engine owns no event loop. External triggers (a result entered, a
// clock tick, a schedule edit) invoke it from request-handling goroutines
// and from per-race deadline checkers; every write to a race's entries,
// time limit, or corrected result set happens under that race's exclusive
// lock, and recomputation reads a consistent snapshot of its inputs then
// writes all derived outputs in one store transaction. A concurrent
// reader therefore never observes a partially recomputed result set.
//
// Staleness is explicit: every input edit bumps the race's recomputation
// generation, and a recomputation pass that was superseded before it ran
// discards itself instead of overwriting newer output.
//
// All operations take their time from an injected Clock, never the global
// wall clock, so the whole pipeline is deterministic under test.
package engine
