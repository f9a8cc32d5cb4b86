package datasync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// NATSKVOptions configures a NATSKVCache.
type NATSKVOptions struct {
	URL string

	// Bucket names the JetStream KV bucket, default "uptop_cache".
	Bucket string
}

// NATSKVCache is a DurableCache backed by a NATS JetStream KV bucket:
// one JSON blob per resource key, persisted by the JetStream store so
// mirrors survive restarts of this process.
type NATSKVCache struct {
	conn   *nats.Conn
	bucket jetstream.KeyValue
}

// NewNATSKVCache connects to the NATS server and opens (or creates) the
// KV bucket.
func NewNATSKVCache(ctx context.Context, opts NATSKVOptions) (*NATSKVCache, error) {
	if opts.URL == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig,
			"datasync", "NewNATSKVCache", "empty nats url")
	}
	if opts.Bucket == "" {
		opts.Bucket = "uptop_cache"
	}

	conn, err := nats.Connect(opts.URL, nats.Name("uptop-datasync"))
	if err != nil {
		return nil, errors.WrapTransient(err, "datasync", "NewNATSKVCache", "connect to nats")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapTransient(err, "datasync", "NewNATSKVCache", "create jetstream context")
	}

	// Prefer an existing bucket; create it on first use. A concurrent
	// creator winning the race surfaces as "already exists", so retry
	// the lookup before failing.
	bucket, err := js.KeyValue(ctx, opts.Bucket)
	if err != nil {
		bucket, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      opts.Bucket,
			Description: "Durable mirror of fetched inventory resources",
		})
		if err != nil {
			if errors.Is(err, jetstream.ErrBucketExists) {
				bucket, err = js.KeyValue(ctx, opts.Bucket)
			}
			if err != nil {
				conn.Close()
				return nil, errors.WrapTransient(err, "datasync", "NewNATSKVCache", "create KV bucket")
			}
		}
	}

	return &NATSKVCache{conn: conn, bucket: bucket}, nil
}

// Load implements DurableCache.
func (n *NATSKVCache) Load(ctx context.Context, resourceKey string) ([]record.Record, time.Time, error) {
	kvEntry, err := n.bucket.Get(ctx, sanitizeKey(resourceKey))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, time.Time{}, errors.ErrNotCached
		}
		return nil, time.Time{}, errors.WrapTransient(err, "datasync", "Load", "get from KV")
	}

	var entry persistedEntry
	if err := json.Unmarshal(kvEntry.Value(), &entry); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", errors.ErrCacheCorrupted, err)
	}
	return entry.Data, entry.Timestamp, nil
}

// Store implements DurableCache.
func (n *NATSKVCache) Store(ctx context.Context, resourceKey string, records []record.Record, fetchedAt time.Time) error {
	data, err := json.Marshal(persistedEntry{Data: records, Timestamp: fetchedAt})
	if err != nil {
		return errors.Wrap(err, "datasync", "Store", "marshal cache entry")
	}
	if _, err := n.bucket.Put(ctx, sanitizeKey(resourceKey), data); err != nil {
		return errors.WrapTransient(err, "datasync", "Store", "put to KV")
	}
	return nil
}

// Keys implements DurableCache.
func (n *NATSKVCache) Keys(ctx context.Context) ([]string, error) {
	keys, err := n.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, errors.WrapTransient(err, "datasync", "Keys", "list KV keys")
	}
	return keys, nil
}

// Close implements DurableCache.
func (n *NATSKVCache) Close() error {
	return n.conn.Drain()
}
