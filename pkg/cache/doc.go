// Package cache provides a generic, thread-safe TTL cache that retains
// expired entries.
//
// Unlike an evicting TTL cache, entries here are never removed on expiry:
// Lookup reports whether an entry is Fresh or Stale and the caller decides
// what stale data is worth. The data service uses this to serve stale
// results when a refresh fails (stale fallback) while still treating
// expiry as the signal to refetch.
//
// Statistics are always collected; Prometheus export is optional via
// functional options.
package cache
