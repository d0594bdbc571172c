// Package store keeps the key event log in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite
)

const schema = `
CREATE TABLE IF NOT EXISTS key_events (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	at_ms INTEGER NOT NULL,
	key   INTEGER NOT NULL,
	state INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS key_events_at ON key_events(at_ms);
`

// Event is one logged key transition.
type Event struct {
	ID    int64
	At    time.Time
	Key   uint8
	State uint8
}

// KeyCount is the number of presses seen for a key.
type KeyCount struct {
	Key     uint8
	Presses int
}

// Store is an open event log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Add logs ev and returns it with its ID.
func (s *Store) Add(ctx context.Context, ev Event) (Event, error) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO key_events (at_ms, key, state) VALUES (?, ?, ?)`,
		ev.At.UnixMilli(), ev.Key, ev.State)
	if err != nil {
		return ev, fmt.Errorf("store: insert: %w", err)
	}
	ev.ID, err = res.LastInsertId()
	if err != nil {
		return ev, fmt.Errorf("store: insert id: %w", err)
	}
	return ev, nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at_ms, key, state FROM key_events ORDER BY at_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev Event
			ms int64
		)
		if err := rows.Scan(&ev.ID, &ms, &ev.Key, &ev.State); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		ev.At = time.UnixMilli(ms)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Presses counts the events in state for each key, busiest first.
func (s *Store) Presses(ctx context.Context, state uint8) ([]KeyCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, COUNT(*) AS n FROM key_events WHERE state = ? GROUP BY key ORDER BY n DESC, key`, state)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []KeyCount
	for rows.Next() {
		var kc KeyCount
		if err := rows.Scan(&kc.Key, &kc.Presses); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

// Prune deletes events older than before and returns how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM key_events WHERE at_ms < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	return res.RowsAffected()
}
