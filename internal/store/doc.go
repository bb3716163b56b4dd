// Package store provides credential storage for authflow.
//
// Store is SQLite-backed and keeps two tables:
//   - credentials: the signed-in session, at most one row
//   - transitions: an append-only log of committed engine transitions
//
// Memory is an in-process credential store for tests and throwaway runs.
// The redisstore subpackage stores the credential in Redis.
//
// # Transition Log
//
//   - Rows are keyed by the engine's event seq; ordering never uses wall time
//   - Writes are idempotent: ON CONFLICT(seq) DO NOTHING
//   - Action lists are stored as canonical JSON so traces compare byte for byte
//
// # Schema
//
// schema.sql creates the tables; later changes are appended to migrations
// and tracked with PRAGMA user_version. Connections run in WAL mode with a
// five second busy timeout.
package store
