package datasync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// DurableCache mirrors fetch results so a restart can serve stale data
// before the first network round trip completes. Implementations must be
// safe for concurrent use.
type DurableCache interface {
	// Load returns the mirrored records and their original fetch time.
	// A missing key returns errors.ErrNotCached; an unreadable blob
	// returns errors.ErrCacheCorrupted (callers treat it as a miss).
	Load(ctx context.Context, resourceKey string) ([]record.Record, time.Time, error)

	// Store replaces the mirror for resourceKey.
	Store(ctx context.Context, resourceKey string, records []record.Record, fetchedAt time.Time) error

	// Keys lists every mirrored resource key.
	Keys(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// persistedEntry is the durable blob layout: one JSON object per resource
// key holding the data rows and the fetch timestamp.
type persistedEntry struct {
	Data      []record.Record `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// FileCache is a DurableCache storing one JSON file per resource key
// under a directory. Writes are atomic (temp file + rename).
type FileCache struct {
	dir string
}

// NewFileCache creates the directory if needed and returns the cache.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig,
			"datasync", "NewFileCache", "empty cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "datasync", "NewFileCache", "create cache directory")
	}
	return &FileCache{dir: dir}, nil
}

// sanitizeKey maps a resource key to a safe file stem. Resource keys are
// plain identifiers in practice, so this is normally the identity.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

func (f *FileCache) path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// Load implements DurableCache.
func (f *FileCache) Load(_ context.Context, resourceKey string) ([]record.Record, time.Time, error) {
	data, err := os.ReadFile(f.path(resourceKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, errors.ErrNotCached
		}
		return nil, time.Time{}, errors.Wrap(err, "datasync", "Load", "read cache file")
	}

	var entry persistedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", errors.ErrCacheCorrupted, err)
	}
	return entry.Data, entry.Timestamp, nil
}

// Store implements DurableCache.
func (f *FileCache) Store(_ context.Context, resourceKey string, records []record.Record, fetchedAt time.Time) error {
	data, err := json.Marshal(persistedEntry{Data: records, Timestamp: fetchedAt})
	if err != nil {
		return errors.Wrap(err, "datasync", "Store", "marshal cache entry")
	}

	target := f.path(resourceKey)
	tmp, err := os.CreateTemp(f.dir, sanitizeKey(resourceKey)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "datasync", "Store", "create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "datasync", "Store", "write cache entry")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "datasync", "Store", "close temp file")
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "datasync", "Store", "replace cache file")
	}
	return nil
}

// Keys implements DurableCache.
func (f *FileCache) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, errors.Wrap(err, "datasync", "Keys", "read cache directory")
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

// Close implements DurableCache. File handles are not held open.
func (f *FileCache) Close() error { return nil }
