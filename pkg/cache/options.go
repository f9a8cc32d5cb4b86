package cache

import (
	"github.com/MdEnamulHaque007/UPTOP-sub000/metric"
)

// Option configures cache behavior using the functional options pattern.
type Option[V any] func(*cacheOptions[V])

// cacheOptions holds internal configuration for cache instances.
// Stats are always collected; Prometheus export is opt-in via WithMetrics.
type cacheOptions[V any] struct {
	metricsReg    *metric.Registry
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for cache statistics.
// The prefix is used as the component label. A nil registry or empty
// prefix disables the option.
func WithMetrics[V any](registry *metric.Registry, prefix string) Option[V] {
	return func(opts *cacheOptions[V]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}
