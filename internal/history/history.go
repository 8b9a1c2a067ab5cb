// Package history persists visited URLs in SQLite and serves them back to
// the omnibox fuzzy matcher and the launcher integrations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver for database/sql
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite for cross-platform compatibility
)

// Entry is a single visited URL.
type Entry struct {
	ID          int64
	URL         string
	Title       string
	VisitCount  int64
	LastVisited time.Time
	CreatedAt   time.Time
}

// Store is a SQLite-backed visit history.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	visit_count INTEGER NOT NULL DEFAULT 1,
	last_visited DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_history_url ON history(url);
CREATE INDEX IF NOT EXISTS idx_history_last_visited ON history(last_visited);
`

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("history: failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddOrUpdateVisit records a visit to url, bumping the visit counter if the
// URL is already known.
func (s *Store) AddOrUpdateVisit(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("history: url cannot be empty")
	}

	const q = `
INSERT INTO history (url) VALUES (?)
ON CONFLICT(url) DO UPDATE SET
	visit_count = visit_count + 1,
	last_visited = CURRENT_TIMESTAMP`
	_, err := s.db.ExecContext(ctx, q, url)
	return err
}

// SetTitle updates the stored title for url. Unknown URLs are ignored.
func (s *Store) SetTitle(ctx context.Context, url, title string) error {
	const q = `UPDATE history SET title = ? WHERE url = ?`
	_, err := s.db.ExecContext(ctx, q, title, url)
	return err
}

// All returns every history entry, most recently visited first.
func (s *Store) All(ctx context.Context) ([]*Entry, error) {
	const q = `
SELECT id, url, title, visit_count, last_visited, created_at
FROM history ORDER BY last_visited DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Recent returns the most recently visited entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	const q = `
SELECT id, url, title, visit_count, last_visited, created_at
FROM history ORDER BY last_visited DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Search returns entries whose URL or title contains the query substring.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	const q = `
SELECT id, url, title, visit_count, last_visited, created_at
FROM history
WHERE url LIKE '%' || ? || '%' OR title LIKE '%' || ? || '%'
ORDER BY last_visited DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, query, query, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// GetByURL returns the entry for an exact URL match, or sql.ErrNoRows.
func (s *Store) GetByURL(ctx context.Context, url string) (*Entry, error) {
	const q = `
SELECT id, url, title, visit_count, last_visited, created_at
FROM history WHERE url = ?`
	row := s.db.QueryRowContext(ctx, q, url)

	e := &Entry{}
	if err := row.Scan(&e.ID, &e.URL, &e.Title, &e.VisitCount, &e.LastVisited, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Trim deletes the oldest entries beyond max, keeping the table bounded.
func (s *Store) Trim(ctx context.Context, max int) error {
	if max <= 0 {
		return nil
	}
	const q = `
DELETE FROM history WHERE id IN (
	SELECT id FROM history ORDER BY last_visited DESC LIMIT -1 OFFSET ?
)`
	_, err := s.db.ExecContext(ctx, q, max)
	return err
}

// Purge deletes all history entries.
func (s *Store) Purge(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &e.VisitCount, &e.LastVisited, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
