// Package startline computes cascading start sequences for fleets sharing
// one start line and handles general-recall re-sequencing.
//
// All derived times are pure functions of the schedule configuration and
// each entry's start_order: Recompute derives every pending entry's
// warning, preparatory, and start times from scratch on every call, so a
// schedule-level edit cascades without reprocessing history and repeated
// recomputation never drifts.
//
// Signal transitions go through an explicit transition table rather than
// storage side effects; out-of-order signals are rejected with a
// SequenceError.
package startline
