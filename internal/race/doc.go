// Package race defines the shared domain model for the race operations
// engine: fleets, start schedules, time limits, ratings, results, and
// series standings.
//
// These types carry no behavior beyond small derived accessors. The state
// machines that move them between statuses live in the owning packages
// (startline, timelimit), and all derived values (planned times, deadlines,
// corrected times, standings) are recomputed by explicit functions rather
// than mutated in place by storage side effects.
//
// Every status field is a closed enum with a Terminal() predicate so callers
// can refuse transitions out of terminal states without enumerating them.
package race
