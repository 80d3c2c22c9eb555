package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/unpack/internal/models"
)

// AddMessage appends a message to a tangent's conversation.
func (db *DB) AddMessage(ctx context.Context, m models.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO messages (id, tangent_id, role, content, client_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.TangentID, m.Role, m.Content, m.ClientID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert message: %w", err)
	}
	return nil
}

// ListMessages returns a tangent's conversation, oldest first. Stored
// messages are always confirmed.
func (db *DB) ListMessages(ctx context.Context, tangentID string) ([]models.Message, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, tangent_id, role, content, client_id, created_at
		FROM messages
		WHERE tangent_id = ?
		ORDER BY created_at, id
	`, tangentID)
	if err != nil {
		return nil, fmt.Errorf("store: list messages: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.TangentID, &m.Role, &m.Content, &m.ClientID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Status = models.StatusConfirmed
		out = append(out, m)
	}
	return out, rows.Err()
}
