//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/unpack/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			entry_id UNINDEXED,
			owner_id UNINDEXED,
			extracted_text,
			overview,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, e models.Entry) error {
	_, _ = tx.ExecContext(ctx, `DELETE FROM entries_fts WHERE entry_id = ?`, e.ID)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entries_fts (entry_id, owner_id, extracted_text, overview) VALUES (?, ?, ?, ?)
	`, e.ID, e.OwnerID, e.ExtractedText, e.Overview)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, tx *sql.Tx, entryID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries_fts WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("store: delete fts: %w", err)
	}
	return nil
}

// SearchEntries performs an FTS5 full-text search over an owner's entries
// and returns matches with snippets.
func (db *DB) SearchEntries(ctx context.Context, ownerID, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.entry_id,
		       e.overview,
		       snippet(f, 2, '<b>', '</b>', '...', 32),
		       e.created_at
		FROM entries_fts f
		JOIN entries e ON e.id = f.entry_id
		WHERE f MATCH ? AND f.owner_id = ?
		ORDER BY rank
		LIMIT ?
	`, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.EntryID, &r.Overview, &r.Snippet, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
