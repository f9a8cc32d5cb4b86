// Package datasync owns communication with the remote tabular source.
//
// A Service fetches a JSON array of rows per resource key over HTTP,
// normalizes and validates each row, and caches the result twice: in
// memory with a TTL (expired entries retained for stale fallback) and,
// optionally, in a durable backend so a restart can serve stale data
// immediately while a fresh fetch happens in the background.
//
// Failure handling follows a fixed ladder: network errors and retryable
// HTTP statuses (5xx, 408, 429) are retried with linear backoff up to the
// attempt ceiling; terminal statuses (other 4xx) fail immediately; after
// the budget is exhausted any cached entry, even expired, is served with
// the result flagged as degraded; only when no cache exists does the
// error reach the caller. Rows failing required-field validation are
// dropped and reported as warnings, never fatal to the batch.
//
// Concurrent fetches for the same resource key are collapsed into a
// single network request via singleflight; joined callers share the
// flight's outcome, including a stale-fallback result. The flight runs
// on a context detached from the first caller, so one caller cancelling
// stops only its own wait, never the shared request.
//
// Services are explicit instances constructed with New and wired by the
// host application. There is no package-level singleton.
package datasync
