// Package store provides the SQLite-backed run journal.
//
// The journal is an append-only audit log of batch runs:
//   - Runs: one row per invocation of the runner (directory, pool sizes)
//   - Entries: one row per executed script line (script, generation,
//     worker, line, command kind, outcome)
//
// The journal never feeds back into processing; event tables are rebuilt
// from scratch for every script.
//
// # Ordering
//
// Entries are ordered by seq, a logical clock value assigned by the engine.
// Wall-clock timestamps are informational only (runs.started_at).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Entries must reference a run
//
// UNIQUE(run_id, script, line) makes a line executed twice a hard error.
package store
