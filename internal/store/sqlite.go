package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ WatchlistStore = (*SQLiteStore)(nil)

// watchlistKey is the fixed key the watchlist is stored under.
const watchlistKey = "watchlist"

// SQLiteStore implements WatchlistStore backed by a single key-value table
// in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the key-value table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the persisted watchlist IDs. A missing row or a value that
// does not decode as a JSON string array yields an empty slice, not an
// error.
func (s *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, watchlistKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		// Corrupt value: treat as no watchlist.
		return nil, nil
	}
	return ids, nil
}

// Save persists the full ID set as a JSON array, replacing any previous
// value.
func (s *SQLiteStore) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	value, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		watchlistKey, string(value))
	return err
}
