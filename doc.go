// Package uptop is the data-synchronization and reactive-state core of
// an inventory dashboard.
//
// The library is organized around four concerns:
//
//   - datasync: fetches inventory resources over HTTP with retry,
//     timeout, a TTL cache with stale fallback, a durable cache mirror
//     (file, Redis, SQLite, or NATS JetStream KV), and request
//     de-duplication.
//   - statestore: a path-addressable reactive state store with ordered
//     subscriber notification (exact path, then ancestors, then
//     wildcard), change history, and a derived summary.
//   - pipeline: filters, sorts, and paginates records by date range,
//     status, supplier, and free-text search, plus a debouncer for
//     bursty re-filter triggers.
//   - normalize and record: canonicalize raw rows into typed records
//     with stable field names and numeric coercion.
//
// Supporting packages provide classified errors (errors), retry with
// linear backoff (pkg/retry), a generic TTL cache (pkg/cache),
// Prometheus metrics (metric), and configuration with persisted user
// preferences (config). The uptopd daemon in cmd wires them together.
package uptop
