package conversation

import (
	"slices"
	"time"

	"github.com/starford/unpack/internal/models"
)

// Timeline is the visible message history: confirmed messages plus pending
// user messages shown before the store acknowledged them. Pending entries
// are reconciled by client id, never by position or content.
type Timeline struct {
	msgs []models.Message
}

// NewTimeline starts a timeline from confirmed history.
func NewTimeline(history []models.Message) *Timeline {
	return &Timeline{msgs: slices.Clone(history)}
}

// AddPending appends an unconfirmed user message and returns it.
func (t *Timeline) AddPending(tangentID, clientID, text string, at time.Time) models.Message {
	m := models.Message{
		TangentID: tangentID,
		Role:      models.RoleUser,
		Content:   text,
		CreatedAt: at,
		ClientID:  clientID,
		Status:    models.StatusPending,
	}
	t.msgs = append(t.msgs, m)
	return m
}

// Confirm replaces the pending message carrying m.ClientID with m. A
// message with no pending counterpart is appended. It reports whether a
// pending message was replaced.
func (t *Timeline) Confirm(m models.Message) bool {
	m.Status = models.StatusConfirmed
	if m.ClientID != "" {
		for i := range t.msgs {
			if t.msgs[i].Pending() && t.msgs[i].ClientID == m.ClientID {
				t.msgs[i] = m
				return true
			}
		}
	}
	t.msgs = append(t.msgs, m)
	return false
}

// Drop removes the pending message with clientID, if any.
func (t *Timeline) Drop(clientID string) {
	t.msgs = slices.DeleteFunc(t.msgs, func(m models.Message) bool {
		return m.Pending() && m.ClientID == clientID
	})
}

// Messages returns a copy of the visible history.
func (t *Timeline) Messages() []models.Message {
	return slices.Clone(t.msgs)
}
