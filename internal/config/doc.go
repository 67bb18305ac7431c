// Package config loads and validates regatta configuration written in
// CUE: the handicap systems in play, the series scoring policy (discard
// table, tie-break strategy), and the default time limits.
//
// User files are unified with the embedded #Regatta schema and validated
// before decoding, so a malformed file fails with positioned CUE errors
// instead of surfacing later as a zero value. The decoded configuration
// converts directly into the domain types and policy functions the engine
// consumes; nothing downstream re-reads files.
package config
