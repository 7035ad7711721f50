// Package journal records scenario runs in SQLite so they can be listed and
// replayed later.
//
// Each run stores the scenario exactly as it was executed (YAML, which keeps
// NaN and infinite coordinates intact), the canonical output bytes and their
// digest. Replaying a run re-executes the stored input and compares digests.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: run_errors rows must reference a run
//
// Runs are ordered by seq, an autoincrement column, never by wall time.
package journal
