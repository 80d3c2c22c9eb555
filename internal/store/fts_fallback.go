//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/unpack/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the entries table.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _ models.Entry) error { return nil }

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) error { return nil }

// SearchEntries performs a LIKE-based search over an owner's entries
// (fallback when FTS5 is not compiled in).
func (db *DB) SearchEntries(ctx context.Context, ownerID, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, overview, substr(extracted_text, 1, 200), created_at
		FROM entries
		WHERE owner_id = ? AND (extracted_text LIKE ? OR overview LIKE ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, ownerID, like, like, limit)
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
