package datasync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/metric"
	"github.com/MdEnamulHaque007/UPTOP-sub000/normalize"
	"github.com/MdEnamulHaque007/UPTOP-sub000/pkg/cache"
	"github.com/MdEnamulHaque007/UPTOP-sub000/pkg/retry"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// maxResponseBytes bounds how much of a response body is read. The sheet
// API returns at most a few thousand rows; 32 MiB is far past any
// legitimate payload.
const maxResponseBytes = 32 << 20

// Config configures a Service.
type Config struct {
	// BaseURL prefixes relative resource paths. Resources mapped to
	// absolute URLs ignore it.
	BaseURL string

	// Resources maps resource keys to paths or absolute URLs.
	Resources map[string]string

	// CacheTTL is how long a fetched dataset stays fresh. Default 5m.
	CacheTTL time.Duration

	// RequestTimeout bounds each network attempt. Default 10s.
	RequestTimeout time.Duration

	// MaxAttempts is the total attempt ceiling per fetch. Default 3.
	MaxAttempts int

	// RetryBaseDelay is the linear backoff unit: attempt n waits
	// RetryBaseDelay × n. Default 500ms.
	RetryBaseDelay time.Duration

	// RequiredFields lists canonical field names a row must carry to be
	// included in results. Rows missing any are dropped with a warning.
	RequiredFields []string
}

func (c *Config) setDefaults() {
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if len(c.Resources) == 0 {
		return errors.WrapFatal(errors.ErrMissingConfig, "datasync", "Validate", "no resources configured")
	}
	for key, target := range c.Resources {
		if key == "" {
			return errors.WrapFatal(errors.ErrInvalidConfig, "datasync", "Validate", "empty resource key")
		}
		if !isAbsoluteURL(target) && c.BaseURL == "" {
			return errors.WrapFatal(errors.ErrMissingConfig, "datasync", "Validate",
				fmt.Sprintf("resource %q is relative but no base URL is set", key))
		}
	}
	return nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Result is the outcome of a fetch.
type Result struct {
	// Records are normalized, validated rows. Callers own the slice.
	Records []record.Record

	// FetchedAt is when the records were retrieved from the network,
	// which for cached and degraded results predates the call.
	FetchedAt time.Time

	// Degraded is set when the fetch failed and stale cached data was
	// served instead.
	Degraded bool

	// Warnings lists per-row validation failures and, for degraded
	// results, the fetch failure.
	Warnings []string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client, e.g. to add a transport-level
// proxy or for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithDurableCache mirrors successful fetches to a durable backend and
// enables LoadDurable.
func WithDurableCache(d DurableCache) Option {
	return func(s *Service) { s.durable = d }
}

// WithMetrics exports fetch and cache metrics through the registry.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Service) { s.registry = reg }
}

// WithRetryObserver registers a hook invoked before each backoff sleep.
// Used by tests and diagnostics to inspect retry behavior.
func WithRetryObserver(fn func(resource string, attempt int, delay time.Duration, err error)) Option {
	return func(s *Service) { s.retryObserver = fn }
}

// Service fetches, normalizes, and caches remote tabular resources.
type Service struct {
	cfg      Config
	client   *http.Client
	logger   *slog.Logger
	memory   *cache.Cache[[]record.Record]
	durable  DurableCache
	group    singleflight.Group
	registry *metric.Registry
	metrics  *metric.Metrics

	retryObserver func(resource string, attempt int, delay time.Duration, err error)
}

// New creates a Service from the configuration. The returned Service is
// safe for concurrent use.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		client: &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var cacheOpts []cache.Option[[]record.Record]
	if s.registry != nil {
		s.metrics = s.registry.Core
		cacheOpts = append(cacheOpts, cache.WithMetrics[[]record.Record](s.registry, "datasync"))
	}

	memory, err := cache.New[[]record.Record](cfg.CacheTTL, cacheOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "datasync", "New", "create memory cache")
	}
	s.memory = memory

	return s, nil
}

// Fetch returns the records for resourceKey. When useCache is true and a
// fresh cache entry exists, it is returned without a network call.
// Concurrent fetches for the same key share one network request.
func (s *Service) Fetch(ctx context.Context, resourceKey string, useCache bool) (Result, error) {
	target, err := s.resourceURL(resourceKey)
	if err != nil {
		return Result{}, err
	}

	if useCache {
		if entry, freshness, ok := s.memory.Lookup(resourceKey); ok && freshness == cache.Fresh {
			s.countFetch(resourceKey, "cached")
			return Result{
				Records:   record.CloneAll(entry.Value),
				FetchedAt: entry.CreatedAt,
			}, nil
		}
	}

	// The flight runs on a context detached from the leader's, so one
	// caller cancelling never fails the shared result for the others;
	// each attempt is still bounded by the request timeout. Callers
	// whose own context dies stop waiting immediately.
	flightCtx := context.WithoutCancel(ctx)
	leader := false
	ch := s.group.DoChan(resourceKey, func() (any, error) {
		leader = true
		res, refreshErr := s.refresh(flightCtx, resourceKey, target)
		if refreshErr != nil {
			return nil, refreshErr
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if !leader {
			s.countDedup(resourceKey)
		}
		if r.Err != nil {
			return Result{}, r.Err
		}
		res := r.Val.(Result)
		// Every caller gets an independent copy of the shared result.
		res.Records = record.CloneAll(res.Records)
		return res, nil
	}
}

// Invalidate drops the in-memory entry for resourceKey, forcing the next
// cached fetch to hit the network.
func (s *Service) Invalidate(resourceKey string) {
	s.memory.Delete(resourceKey)
}

// CacheStats exposes memory-cache statistics.
func (s *Service) CacheStats() *cache.Statistics {
	return s.memory.Stats()
}

// LoadDurable primes the memory cache from the durable backend. Entries
// keep their original fetch time, so old mirrors land already stale and
// the next fetch still refreshes them; the point is having data to fall
// back on immediately after a restart. Corrupt entries are skipped.
func (s *Service) LoadDurable(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}

	keys, err := s.durable.Keys(ctx)
	if err != nil {
		return errors.Wrap(err, "datasync", "LoadDurable", "list durable keys")
	}

	for _, key := range keys {
		records, fetchedAt, err := s.durable.Load(ctx, key)
		if err != nil {
			if errors.Is(err, errors.ErrCacheCorrupted) {
				s.logger.Warn("durable cache entry corrupted, treating as miss",
					"resource", key, "error", err)
				continue
			}
			return errors.Wrap(err, "datasync", "LoadDurable", "load "+key)
		}
		s.memory.PutAt(key, records, fetchedAt)
		s.logger.Info("primed cache from durable storage",
			"resource", key, "rows", len(records), "fetched_at", fetchedAt)
	}
	return nil
}

// Close releases the durable backend, if any.
func (s *Service) Close() error {
	if s.durable == nil {
		return nil
	}
	return s.durable.Close()
}

func (s *Service) resourceURL(resourceKey string) (string, error) {
	target, ok := s.cfg.Resources[resourceKey]
	if !ok {
		return "", errors.WrapInvalid(errors.ErrResourceNotConfigured,
			"datasync", "Fetch", "resolve "+resourceKey)
	}
	if isAbsoluteURL(target) {
		return target, nil
	}
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(target, "/"), nil
}

// refresh performs the retried network fetch and applies the cache update
// or stale fallback. Runs at most once per key at a time (singleflight).
func (s *Service) refresh(ctx context.Context, key, target string) (Result, error) {
	start := time.Now()
	records, warnings, err := s.fetchRemote(ctx, key, target)
	if s.metrics != nil {
		s.metrics.FetchDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
	}

	if err == nil {
		now := time.Now()
		s.memory.Put(key, records)
		if s.durable != nil {
			if derr := s.durable.Store(ctx, key, records, now); derr != nil {
				s.logger.Warn("durable cache mirror failed", "resource", key, "error", derr)
			}
		}
		s.countFetch(key, "fresh")
		return Result{Records: records, FetchedAt: now, Warnings: warnings}, nil
	}

	// Stale fallback: any cached entry beats surfacing the failure.
	if entry, _, ok := s.memory.Lookup(key); ok {
		s.logger.Warn("fetch failed, serving stale cache",
			"resource", key, "fetched_at", entry.CreatedAt, "error", err)
		s.countFetch(key, "stale")
		return Result{
			Records:   entry.Value,
			FetchedAt: entry.CreatedAt,
			Degraded:  true,
			Warnings:  append(warnings, err.Error()),
		}, nil
	}

	s.countFetch(key, "error")
	return Result{}, errors.Wrap(err, "datasync", "Fetch", "refresh "+key)
}

type attemptResult struct {
	records  []record.Record
	warnings []string
}

func (s *Service) fetchRemote(ctx context.Context, key, target string) ([]record.Record, []string, error) {
	cfg := retry.Config{
		MaxAttempts: s.cfg.MaxAttempts,
		BaseDelay:   s.cfg.RetryBaseDelay,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			s.logger.Warn("fetch attempt failed, backing off",
				"resource", key, "attempt", attempt, "delay", delay, "error", err)
			s.countRetry(key)
			if s.retryObserver != nil {
				s.retryObserver(key, attempt, delay, err)
			}
		},
	}

	res, err := retry.DoWithResult(ctx, cfg, func() (attemptResult, error) {
		rows, err := s.attempt(ctx, target)
		if err != nil {
			return attemptResult{}, err
		}
		records, warnings := s.normalizeRows(key, rows)
		return attemptResult{records: records, warnings: warnings}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return res.records, res.warnings, nil
}

// attempt performs one bounded network request and decodes the row array.
func (s *Service) attempt(ctx context.Context, target string) ([]map[string]any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, retry.NonRetryable(
			errors.WrapInvalid(err, "datasync", "attempt", "build request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", errors.ErrRequestTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		statusErr := &errors.HTTPStatusError{StatusCode: resp.StatusCode, URL: target}
		if statusErr.Terminal() {
			return nil, retry.NonRetryable(statusErr)
		}
		return nil, statusErr
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrParsingFailed, err)
	}
	return rows, nil
}

// normalizeRows cleans every raw row, dropping those that fail validation.
func (s *Service) normalizeRows(key string, rows []map[string]any) ([]record.Record, []string) {
	records := make([]record.Record, 0, len(rows))
	var warnings []string
	for i, row := range rows {
		rec := normalize.Row(row)
		if err := normalize.Validate(rec, s.cfg.RequiredFields); err != nil {
			s.logger.Warn("dropping invalid row", "resource", key, "row", i, "error", err)
			warnings = append(warnings, fmt.Sprintf("row %d: %v", i, err))
			s.countDropped(key)
			continue
		}
		records = append(records, rec)
	}
	return records, warnings
}

func (s *Service) countFetch(key, outcome string) {
	if s.metrics != nil {
		s.metrics.FetchesTotal.WithLabelValues(key, outcome).Inc()
	}
}

func (s *Service) countRetry(key string) {
	if s.metrics != nil {
		s.metrics.RetriesTotal.WithLabelValues(key).Inc()
	}
}

func (s *Service) countDedup(key string) {
	if s.metrics != nil {
		s.metrics.DedupJoined.WithLabelValues(key).Inc()
	}
}

func (s *Service) countDropped(key string) {
	if s.metrics != nil {
		s.metrics.RowsDropped.WithLabelValues(key).Inc()
	}
}
