// Package store persists clipboard history and snippets in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"go.klb.dev/snipstash/internal/classify"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Item is a classified clipboard capture. Immutable once created.
type Item struct {
	ID         string
	Content    string
	Kind       classify.Kind
	CapturedAt time.Time
}

// Snippet is a user-authored piece of reusable text. Trigger optionally
// holds a chord string ("ctrl+shift+1"); empty means no shortcut.
type Snippet struct {
	ID      string
	Title   string
	Content string
	Trigger string
}

// Store is the SQLite-backed history and snippet storage.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	content     TEXT NOT NULL,
	kind        TEXT NOT NULL,
	captured_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS history_captured_at ON history(captured_at DESC);

CREATE TABLE IF NOT EXISTS snippets (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	content  TEXT NOT NULL,
	trigger_ TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0
);
`

// Open opens (creating if necessary) the store under dataDir.
// If dataDir is empty, defaults to ~/.snipstash.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".snipstash")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "snipstash.db")

	// WAL so the daemon and CLI tools can share the file
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Insert stores a history item. Deduplication is the capture pipeline's
// responsibility; Insert stores whatever it is given.
func (s *Store) Insert(ctx context.Context, it Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, content, kind, captured_at) VALUES (?, ?, ?, ?)`,
		it.ID, it.Content, string(it.Kind), it.CapturedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting history item: %w", err)
	}
	return nil
}

// Latest returns the most recently captured item.
func (s *Store) Latest(ctx context.Context) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, kind, captured_at FROM history ORDER BY captured_at DESC LIMIT 1`)
	return scanItem(row)
}

// Recent returns up to n items, newest first. n <= 0 returns everything.
func (s *Store) Recent(ctx context.Context, n int) ([]Item, error) {
	q := `SELECT id, content, kind, captured_at FROM history ORDER BY captured_at DESC`
	args := []any{}
	if n > 0 {
		q += ` LIMIT ?`
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var kind string
		var ns int64
		if err := rows.Scan(&it.ID, &it.Content, &kind, &ns); err != nil {
			return nil, fmt.Errorf("scanning history item: %w", err)
		}
		it.Kind = classify.Kind(kind)
		it.CapturedAt = time.Unix(0, ns)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Delete removes one history item.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting history item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all history.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Prune keeps only the newest limit items. limit <= 0 is a no-op.
func (s *Store) Prune(ctx context.Context, limit int) error {
	if limit <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY captured_at DESC LIMIT ?
		)`, limit)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}
	return nil
}

// PutSnippet inserts or updates a snippet. New snippets go to the end of the
// ordering.
func (s *Store) PutSnippet(ctx context.Context, sn Snippet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snippets (id, title, content, trigger_, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM snippets))
		ON CONFLICT(id) DO UPDATE SET title = excluded.title,
			content = excluded.content, trigger_ = excluded.trigger_`,
		sn.ID, sn.Title, sn.Content, sn.Trigger,
	)
	if err != nil {
		return fmt.Errorf("storing snippet: %w", err)
	}
	return nil
}

// Snippets returns all snippets in their stable user-defined order.
func (s *Store) Snippets(ctx context.Context) ([]Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, trigger_ FROM snippets ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying snippets: %w", err)
	}
	defer rows.Close()

	var out []Snippet
	for rows.Next() {
		var sn Snippet
		if err := rows.Scan(&sn.ID, &sn.Title, &sn.Content, &sn.Trigger); err != nil {
			return nil, fmt.Errorf("scanning snippet: %w", err)
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// Snippet returns one snippet by ID.
func (s *Store) Snippet(ctx context.Context, id string) (Snippet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, trigger_ FROM snippets WHERE id = ?`, id)
	var sn Snippet
	err := row.Scan(&sn.ID, &sn.Title, &sn.Content, &sn.Trigger)
	if errors.Is(err, sql.ErrNoRows) {
		return Snippet{}, ErrNotFound
	}
	if err != nil {
		return Snippet{}, fmt.Errorf("loading snippet: %w", err)
	}
	return sn, nil
}

// DeleteSnippet removes one snippet.
func (s *Store) DeleteSnippet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snippet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Counts returns the number of history items and snippets.
func (s *Store) Counts(ctx context.Context) (items, snippets int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&items); err != nil {
		return 0, 0, fmt.Errorf("counting history: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippets`).Scan(&snippets); err != nil {
		return 0, 0, fmt.Errorf("counting snippets: %w", err)
	}
	return items, snippets, nil
}

func scanItem(row *sql.Row) (Item, error) {
	var it Item
	var kind string
	var ns int64
	err := row.Scan(&it.ID, &it.Content, &kind, &ns)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("scanning history item: %w", err)
	}
	it.Kind = classify.Kind(kind)
	it.CapturedAt = time.Unix(0, ns)
	return it, nil
}
