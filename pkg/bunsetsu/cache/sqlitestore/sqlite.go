// Package sqlitestore provides a persistent cache storage on SQLite.
// Values are JSON-encoded segmenter results; WAL mode keeps concurrent
// readers and the single writer out of each other's way.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
)

// Store is a SQLite-backed implementation of cache.Storage.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the cache database at path. Use
// ":memory:" for an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS segment_cache (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Get implements cache.Storage.
func (s *Store) Get(ctx context.Context, key string) (segment.Result, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM segment_cache WHERE key = ?", key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return segment.Result{}, false, nil
	}
	if err != nil {
		return segment.Result{}, false, err
	}
	var val segment.Result
	if err := json.Unmarshal(blob, &val); err != nil {
		return segment.Result{}, false, fmt.Errorf("sqlitestore: corrupt entry %s: %w", key, err)
	}
	return val, true, nil
}

// Set implements cache.Storage.
func (s *Store) Set(ctx context.Context, key string, val segment.Result) error {
	blob, err := json.Marshal(val)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO segment_cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, blob)
	return err
}

// Has implements cache.Storage.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM segment_cache WHERE key = ?", key).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
