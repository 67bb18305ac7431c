// Package handicap implements the handicap time-correction engine: a pure
// function from (system, rating, elapsed time, optional distance) to a
// corrected time, used identically at result entry and at any later
// recomputation.
//
// Time-on-time systems multiply elapsed time by a TCF whose derivation
// depends on the system family; time-on-distance subtracts distance times
// rating and cannot execute without a course distance. Rank assigns
// corrected positions within one race, excluding non-finishers and
// reporting exact corrected-time ties without resolving them.
package handicap
