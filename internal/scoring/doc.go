// Package scoring aggregates per-race corrected positions into ranked
// series standings with discards.
//
// The discard count is an injected policy function of races sailed, never
// a hard-coded table, and the tie-break algorithm is a pluggable strategy:
// the aggregator guarantees ties are detected deterministically and
// flagged, but resolving them is configuration. A boat with unscored races
// still receives a standing, clearly marked provisional.
package scoring
