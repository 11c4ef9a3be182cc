// Package store owns all persistence: bookmarks, tags and their
// associations, import history, and settings, backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/linkhoard/linkhoard/internal/domain"
)

const timeLayout = time.RFC3339

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	url         TEXT NOT NULL UNIQUE,
	title       TEXT,
	description TEXT,
	is_private  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS bookmark_tags (
	bookmark_id INTEGER NOT NULL REFERENCES bookmarks(id) ON DELETE CASCADE,
	tag_id      INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (bookmark_id, tag_id)
);

CREATE TABLE IF NOT EXISTS imports (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	filename        TEXT,
	bookmark_ids    TEXT NOT NULL,
	created_count   INTEGER NOT NULL DEFAULT 0,
	updated_count   INTEGER NOT NULL DEFAULT 0,
	additional_tags TEXT,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_created_at ON bookmarks(created_at);
CREATE INDEX IF NOT EXISTS idx_bookmark_tags_tag ON bookmark_tags(tag_id);
`

// Store wraps the SQLite connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the SQLite database at path with WAL
// mode and foreign keys enabled, and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the time source. Used in tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Tx is an open transaction exposing the store operations the import engine
// composes into one atomic batch.
type Tx struct {
	q   *sql.Tx
	now func() time.Time
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = dbtx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{q: dbtx, now: s.now}); err != nil {
		_ = dbtx.Rollback()
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func (t *Tx) timestamp() string {
	return t.now().UTC().Format(timeLayout)
}

// nullString maps "" to NULL so that cleared optional fields are stored as
// absent rather than empty strings.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

const bookmarkSelect = `
	SELECT b.id, b.url, b.title, b.description, b.is_private, b.created_at, b.updated_at,
	       COALESCE(GROUP_CONCAT(DISTINCT t.name), '') AS tags
	FROM bookmarks b
	LEFT JOIN bookmark_tags bt ON b.id = bt.bookmark_id
	LEFT JOIN tags t ON bt.tag_id = t.id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookmark(row rowScanner) (*domain.Bookmark, error) {
	var (
		b           domain.Bookmark
		title, desc sql.NullString
		isPrivate   int
		created     string
		updated     string
		tags        string
	)
	if err := row.Scan(&b.ID, &b.URL, &title, &desc, &isPrivate, &created, &updated, &tags); err != nil {
		return nil, err
	}
	b.Title = title.String
	b.Description = desc.String
	b.IsPrivate = isPrivate != 0
	b.CreatedAt = parseTime(created)
	b.UpdatedAt = parseTime(updated)
	b.Tags = splitTags(tags)
	return &b, nil
}

// splitTags parses a GROUP_CONCAT result. Tag names never contain commas:
// manual entry splits on commas and folder tags reduce to [a-z0-9_].
func splitTags(concat string) []string {
	if concat == "" {
		return []string{}
	}
	tags := strings.Split(concat, ",")
	sort.Strings(tags)
	return tags
}
