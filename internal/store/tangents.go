package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/models"
)

const tangentColumns = `id, entry_id, owner_id, name, emotion, excerpt, interacted, created_at`

// GetTangent returns one tangent or apperr.ErrNotFound.
func (db *DB) GetTangent(ctx context.Context, id string) (models.Tangent, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+tangentColumns+` FROM tangents WHERE id = ?`, id)
	t, err := scanTangent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tangent{}, fmt.Errorf("tangent %s: %w", id, apperr.ErrNotFound)
	}
	return t, err
}

// ListTangents returns an entry's tangents in discovery order.
func (db *DB) ListTangents(ctx context.Context, entryID string) ([]models.Tangent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+tangentColumns+`
		FROM tangents
		WHERE entry_id = ?
		ORDER BY position, rowid
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("store: list tangents: %w", err)
	}
	defer rows.Close()

	out := []models.Tangent{}
	for rows.Next() {
		t, err := scanTangent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkInteracted flags a tangent as opened by its owner.
func (db *DB) MarkInteracted(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE tangents SET interacted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: mark interacted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tangent %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DeleteTangent removes a tangent and its messages in one transaction.
func (db *DB) DeleteTangent(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE tangent_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete tangent messages: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tangents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete tangent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tangent %s: %w", id, apperr.ErrNotFound)
	}
	return tx.Commit()
}

func scanTangent(s scanner) (models.Tangent, error) {
	var t models.Tangent
	err := s.Scan(&t.ID, &t.EntryID, &t.OwnerID, &t.Name, &t.Emotion, &t.Excerpt, &t.Interacted, &t.CreatedAt)
	return t, err
}
