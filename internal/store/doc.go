// Package store persists race-operations state in SQLite.
//
// The store is deliberately dumb: it holds raw inputs (schedules, entries,
// limits, ratings, results) and derived outputs (corrected results,
// standings) but contains no triggers and no cascade logic — every derived
// row is written by an explicit recomputation in the engine package, and
// derived sets are replaced wholesale inside one transaction so a
// concurrent reader never observes a partially-recomputed result set.
//
// Writes are idempotent where identity allows it: audit events are
// content-addressed and inserted with ON CONFLICT DO NOTHING.
package store
