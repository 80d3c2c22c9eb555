package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/models"
)

// SearchResult is one entry matching a search.
type SearchResult struct {
	EntryID   string    `json:"entry_id"`
	Overview  string    `json:"overview"`
	Snippet   string    `json:"snippet"`
	CreatedAt time.Time `json:"created_at"`
}

const entryColumns = `id, owner_id, photo_keys, extracted_text, overview, confidence, insights, created_at`

// CreateEntry inserts an entry and all of its tangents in one transaction.
// Either everything is stored or nothing is. IDs and timestamps are
// assigned here.
func (db *DB) CreateEntry(ctx context.Context, e models.Entry, cands []models.TangentCandidate) (models.Entry, []models.Tangent, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.PhotoKeys == nil {
		e.PhotoKeys = []string{}
	}
	keysJSON, err := json.Marshal(e.PhotoKeys)
	if err != nil {
		return models.Entry{}, nil, fmt.Errorf("store: encode photo keys: %w", err)
	}
	insightsJSON, err := json.Marshal(e.Insights)
	if err != nil {
		return models.Entry{}, nil, fmt.Errorf("store: encode insights: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.OwnerID, string(keysJSON), e.ExtractedText, e.Overview, e.Confidence, string(insightsJSON), e.CreatedAt)
	if err != nil {
		return models.Entry{}, nil, fmt.Errorf("store: insert entry: %w", err)
	}
	if err := ftsUpsert(ctx, tx, e); err != nil {
		return models.Entry{}, nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tangents (id, entry_id, owner_id, name, emotion, excerpt, interacted, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`)
	if err != nil {
		return models.Entry{}, nil, fmt.Errorf("store: prepare tangent insert: %w", err)
	}
	defer stmt.Close()

	tangents := make([]models.Tangent, len(cands))
	for i, c := range cands {
		t := models.Tangent{
			ID:        uuid.NewString(),
			EntryID:   e.ID,
			OwnerID:   e.OwnerID,
			Name:      c.Name,
			Emotion:   c.Emotion,
			Excerpt:   c.Excerpt,
			CreatedAt: e.CreatedAt,
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.EntryID, t.OwnerID, t.Name, t.Emotion, t.Excerpt, i, t.CreatedAt); err != nil {
			return models.Entry{}, nil, fmt.Errorf("store: insert tangent: %w", err)
		}
		tangents[i] = t
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, nil, fmt.Errorf("store: commit entry: %w", err)
	}
	return e, tangents, nil
}

// GetEntry returns one entry or apperr.ErrNotFound.
func (db *DB) GetEntry(ctx context.Context, id string) (models.Entry, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, fmt.Errorf("entry %s: %w", id, apperr.ErrNotFound)
	}
	return e, err
}

// ListEntries returns an owner's entries, newest first.
func (db *DB) ListEntries(ctx context.Context, ownerID string, limit, offset int) ([]models.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: list entries: %w", err)
	}
	defer rows.Close()

	out := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEntry removes an entry with its tangents and their messages in one
// transaction.
func (db *DB) DeleteEntry(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM messages WHERE tangent_id IN (SELECT id FROM tangents WHERE entry_id = ?)
	`, id); err != nil {
		return fmt.Errorf("store: delete entry messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tangents WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete entry tangents: %w", err)
	}
	if err := ftsDelete(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", id, apperr.ErrNotFound)
	}
	return tx.Commit()
}

func scanEntry(s scanner) (models.Entry, error) {
	var (
		e            models.Entry
		keysJSON     string
		insightsJSON string
	)
	if err := s.Scan(&e.ID, &e.OwnerID, &keysJSON, &e.ExtractedText, &e.Overview, &e.Confidence, &insightsJSON, &e.CreatedAt); err != nil {
		return models.Entry{}, err
	}
	if err := json.Unmarshal([]byte(keysJSON), &e.PhotoKeys); err != nil {
		return models.Entry{}, fmt.Errorf("store: decode photo keys of %s: %w", e.ID, err)
	}
	// Rows written before insights existed hold '{}' and read back neutral.
	e.Insights = models.NeutralInsights()
	if err := json.Unmarshal([]byte(insightsJSON), &e.Insights); err != nil {
		return models.Entry{}, fmt.Errorf("store: decode insights of %s: %w", e.ID, err)
	}
	return e, nil
}
