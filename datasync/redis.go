package datasync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces cache keys, default "uptop:cache:".
	Prefix string

	// DialTimeout bounds the connection attempt. Default 2s.
	DialTimeout time.Duration
}

// RedisCache is a DurableCache backed by Redis. Entries carry no Redis
// TTL: stale fallback needs expired data to survive, so freshness is
// judged by the stored timestamp, not by key expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig,
			"datasync", "NewRedisCache", "empty redis address")
	}
	if opts.Prefix == "" {
		opts.Prefix = "uptop:cache:"
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WrapTransient(err, "datasync", "NewRedisCache", "ping redis")
	}

	return &RedisCache{client: client, prefix: opts.Prefix}, nil
}

func (r *RedisCache) key(resourceKey string) string {
	return r.prefix + resourceKey
}

// Load implements DurableCache.
func (r *RedisCache) Load(ctx context.Context, resourceKey string) ([]record.Record, time.Time, error) {
	data, err := r.client.Get(ctx, r.key(resourceKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, time.Time{}, errors.ErrNotCached
		}
		return nil, time.Time{}, errors.WrapTransient(err, "datasync", "Load", "redis get")
	}

	var entry persistedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", errors.ErrCacheCorrupted, err)
	}
	return entry.Data, entry.Timestamp, nil
}

// Store implements DurableCache.
func (r *RedisCache) Store(ctx context.Context, resourceKey string, records []record.Record, fetchedAt time.Time) error {
	data, err := json.Marshal(persistedEntry{Data: records, Timestamp: fetchedAt})
	if err != nil {
		return errors.Wrap(err, "datasync", "Store", "marshal cache entry")
	}
	if err := r.client.Set(ctx, r.key(resourceKey), data, 0).Err(); err != nil {
		return errors.WrapTransient(err, "datasync", "Store", "redis set")
	}
	return nil
}

// Keys implements DurableCache.
func (r *RedisCache) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(r.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WrapTransient(err, "datasync", "Keys", "redis scan")
	}
	return keys, nil
}

// Close implements DurableCache.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
