// Package cli implements the raceops command tree: schedule creation,
// start-sequence signals and recalls, result and rating entry, corrected
// scoring, series standings, and the time-limit checker.
//
// Commands share global --db, --config, and --format flags; output is
// rendered as text or JSON through OutputFormatter and failures carry
// meaningful exit codes via ExitError.
package cli
