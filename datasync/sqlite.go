package datasync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS resource_cache (
	resource_key TEXT PRIMARY KEY,
	payload      BLOB NOT NULL,
	fetched_at   INTEGER NOT NULL
)`

// SQLiteCache is a DurableCache backed by an embedded SQLite database,
// the closest server-less analog to the browser's localStorage mirror.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the database file and ensures the
// schema exists.
func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if path == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig,
			"datasync", "NewSQLiteCache", "empty database path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "datasync", "NewSQLiteCache", "open database")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "datasync", "NewSQLiteCache", "create schema")
	}

	return &SQLiteCache{db: db}, nil
}

// Load implements DurableCache.
func (s *SQLiteCache) Load(ctx context.Context, resourceKey string) ([]record.Record, time.Time, error) {
	var payload []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM resource_cache WHERE resource_key = ?`,
		resourceKey,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, time.Time{}, errors.ErrNotCached
		}
		return nil, time.Time{}, errors.Wrap(err, "datasync", "Load", "query cache row")
	}

	var records []record.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", errors.ErrCacheCorrupted, err)
	}
	return records, time.UnixMilli(fetchedAt), nil
}

// Store implements DurableCache.
func (s *SQLiteCache) Store(ctx context.Context, resourceKey string, records []record.Record, fetchedAt time.Time) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "datasync", "Store", "marshal records")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resource_cache (resource_key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(resource_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		resourceKey, payload, fetchedAt.UnixMilli(),
	)
	if err != nil {
		return errors.Wrap(err, "datasync", "Store", "upsert cache row")
	}
	return nil
}

// Keys implements DurableCache.
func (s *SQLiteCache) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT resource_key FROM resource_cache ORDER BY resource_key`)
	if err != nil {
		return nil, errors.Wrap(err, "datasync", "Keys", "query cache keys")
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "datasync", "Keys", "scan cache key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "datasync", "Keys", "iterate cache keys")
	}
	return keys, nil
}

// Close implements DurableCache.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
