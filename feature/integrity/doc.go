// Package integrity exposes health checks for a running catalog.
//
// # Checks Provided
//
//   - Statistics: Rebuilds the statistics from the stored items and reports whether the running counters had drifted.
//   - Keys: Lists buckets that hold nothing but blanks (supports ?fix=true to drop them).
//   - Schema: Verifies that the SQL bucket store tables carry the expected columns. Unavailable on the memory store.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/statistics : Runs the statistics recount.
//   - GET /integrity/keys : Runs the empty bucket check (supports ?fix=true).
//   - GET /integrity/schema : Runs the store schema check.
package integrity
