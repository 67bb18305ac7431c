// Package harness executes race-day scenarios end to end for conformance
// testing: a YAML scenario drives the engine through schedule creation,
// start signals, recalls, finishes, ratings, and deadline checks against
// a fake clock, and the resulting corrected results and standings are
// snapshotted and compared against golden files.
//
// Scenarios are the "operational principles" of this engine: each one
// encodes an observable behavior (a recall preserves contiguity, a lapsed
// window DNFs the stragglers, a tie is flagged) as a full pipeline run
// rather than a unit assertion.
package harness
