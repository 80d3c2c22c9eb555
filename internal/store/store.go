// Package store persists entries, tangents and messages in SQLite, with
// optional FTS5 full-text search over entry text.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/unpack/internal/models"
)

// Journal is the persistence surface used by the service layer.
// Consumers should depend on this interface rather than on *DB.
type Journal interface {
	CreateEntry(ctx context.Context, e models.Entry, tangents []models.TangentCandidate) (models.Entry, []models.Tangent, error)
	GetEntry(ctx context.Context, id string) (models.Entry, error)
	ListEntries(ctx context.Context, ownerID string, limit, offset int) ([]models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	SearchEntries(ctx context.Context, ownerID, query string, limit int) ([]SearchResult, error)

	GetTangent(ctx context.Context, id string) (models.Tangent, error)
	ListTangents(ctx context.Context, entryID string) ([]models.Tangent, error)
	MarkInteracted(ctx context.Context, id string) error
	DeleteTangent(ctx context.Context, id string) error

	AddMessage(ctx context.Context, m models.Message) error
	ListMessages(ctx context.Context, tangentID string) ([]models.Message, error)

	Close() error
}

var _ Journal = (*DB)(nil)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id             TEXT PRIMARY KEY,
	owner_id       TEXT NOT NULL,
	photo_keys     TEXT NOT NULL DEFAULT '[]',
	extracted_text TEXT NOT NULL DEFAULT '',
	overview       TEXT NOT NULL DEFAULT '',
	confidence     REAL NOT NULL DEFAULT 0,
	insights       TEXT NOT NULL DEFAULT '{}',
	created_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tangents (
	id          TEXT PRIMARY KEY,
	entry_id    TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	owner_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	emotion     TEXT NOT NULL,
	excerpt     TEXT NOT NULL DEFAULT '',
	interacted  INTEGER NOT NULL DEFAULT 0,
	position    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	tangent_id  TEXT NOT NULL REFERENCES tangents(id) ON DELETE CASCADE,
	role        TEXT NOT NULL CHECK (role IN ('user', 'ai')),
	content     TEXT NOT NULL,
	client_id   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_owner ON entries(owner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_tangents_entry ON tangents(entry_id, position);
CREATE INDEX IF NOT EXISTS idx_messages_tangent ON messages(tangent_id, created_at);
`

// DB wraps a sql.DB with journal operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := addColumn(conn, "entries", "insights", `TEXT NOT NULL DEFAULT '{}'`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: migrate entries: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// addColumn adds column to a table created before the column existed.
func addColumn(conn *sql.DB, table, column, decl string) error {
	var n int
	err := conn.QueryRow(`SELECT count(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = conn.Exec(`ALTER TABLE ` + table + ` ADD COLUMN ` + column + ` ` + decl)
	return err
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

type scanner interface {
	Scan(dest ...any) error
}
