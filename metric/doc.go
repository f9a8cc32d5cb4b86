// Package metric provides Prometheus metrics for the data core.
//
// A Registry owns an isolated prometheus.Registry plus the core fetch and
// cache metrics every deployment gets. Components register their own
// metrics through the Register* methods; duplicate registrations are
// reported as invalid errors rather than panicking.
package metric
