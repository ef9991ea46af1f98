// Package store persists notes, links, taxonomy, and posts in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '',
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	color      TEXT NOT NULL DEFAULT '',
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	excerpt     TEXT NOT NULL DEFAULT '',
	category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
	is_pinned   BOOLEAN NOT NULL DEFAULT FALSE,
	is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
	is_moc      BOOLEAN NOT NULL DEFAULT FALSE,
	checksum    TEXT NOT NULL DEFAULT '',
	source_path TEXT NOT NULL DEFAULT '',
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner_updated ON notes(owner_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_owner_source ON notes(owner_id, source_path);

CREATE TABLE IF NOT EXISTS note_tags (
	note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	tag_id  TEXT NOT NULL REFERENCES tags(id),
	PRIMARY KEY (note_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag_id);

CREATE TABLE IF NOT EXISTS note_links (
	id         TEXT PRIMARY KEY,
	source_id  TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	target_id  TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	context    TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL DEFAULT 0,
	created_at {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_note_links_source ON note_links(source_id);
CREATE INDEX IF NOT EXISTS idx_note_links_target ON note_links(target_id);

CREATE TABLE IF NOT EXISTS posts (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	note_id      TEXT REFERENCES notes(id) ON DELETE SET NULL,
	title        TEXT NOT NULL,
	slug         TEXT NOT NULL UNIQUE,
	content      TEXT NOT NULL DEFAULT '',
	excerpt      TEXT NOT NULL DEFAULT '',
	category_id  TEXT REFERENCES categories(id),
	published    BOOLEAN NOT NULL DEFAULT FALSE,
	published_at {{ts}},
	created_at   {{ts}} NOT NULL,
	updated_at   {{ts}} NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_note ON posts(note_id);
`

// conn carries the query methods shared by Store and Tx.
type conn struct {
	q  sqlx.ExtContext
	sb sq.StatementBuilderType
}

// Store is the database handle.
type Store struct {
	conn
	db *sqlx.DB
}

// Tx is a Store bound to one transaction.
type Tx struct {
	conn
	tx *sqlx.Tx
}

// Open connects to the database and applies the schema. For SQLite the DSN is a file
// path; WAL mode, a busy timeout and foreign keys are switched on.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver == DriverSQLite {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + sqliteParams
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", driver, err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection without touching the schema.
func New(db *sqlx.DB) *Store {
	return &Store{conn: newConn(db, db.DriverName()), db: db}
}

func newConn(q sqlx.ExtContext, driver string) conn {
	var ph sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		ph = sq.Dollar
	}
	return conn{q: q, sb: sq.StatementBuilder.PlaceholderFormat(ph)}
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	ts := "TIMESTAMP"
	if s.db.DriverName() == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}
	ddl := strings.ReplaceAll(schemaTemplate, "{{ts}}", ts)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Tx{conn: newConn(tx, s.db.DriverName()), tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (c conn) get(ctx context.Context, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.GetContext(ctx, c.q, dest, query, args...)
}

func (c conn) selectAll(ctx context.Context, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, c.q, dest, query, args...)
}

func (c conn) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return c.q.ExecContext(ctx, query, args...)
}

// execOne runs b and reports sql.ErrNoRows when it touched nothing.
func (c conn) execOne(ctx context.Context, b sq.Sqlizer) error {
	res, err := c.exec(ctx, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var le sqlite3.Error
	if errors.As(err, &le) {
		return le.ExtendedCode == sqlite3.ErrConstraintUnique || le.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// likePattern builds a case-insensitive LIKE pattern for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
