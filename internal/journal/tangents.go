package journal

import (
	"context"
	"errors"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/conversation"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/sse"
)

// Conversation is a tangent with its message history.
type Conversation struct {
	Tangent  models.Tangent   `json:"tangent"`
	Messages []models.Message `json:"messages"`
	State    string           `json:"state"`
}

// GetTangent returns a tangent owned by ownerID.
func (s *Service) GetTangent(ctx context.Context, ownerID, id string) (models.Tangent, error) {
	t, _, err := s.ownedTangent(ctx, ownerID, id)
	return t, err
}

// OpenTangent marks the tangent as interacted and, the first time, seeds
// the conversation with the companion's opening message.
func (s *Service) OpenTangent(ctx context.Context, ownerID, id string) (*Conversation, error) {
	t, e, err := s.ownedTangent(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !t.Interacted {
		if err := s.db.MarkInteracted(ctx, t.ID); err != nil {
			return nil, err
		}
		t.Interacted = true
	}

	history, err := s.db.ListMessages(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if conversation.StateOf(history) == conversation.Unseeded {
		m, err := s.engine.Seed(ctx, t, e)
		switch {
		case err == nil:
			s.publishMessage(ownerID, m)
			history = append(history, m)
		case errors.Is(err, apperr.ErrInvalidState):
			// Seeded concurrently; fall through to the stored history.
			if history, err = s.db.ListMessages(ctx, t.ID); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}
	return s.conversation(ctx, t, history)
}

// Messages returns a tangent's conversation without changing it.
func (s *Service) Messages(ctx context.Context, ownerID, id string) (*Conversation, error) {
	t, _, err := s.ownedTangent(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	history, err := s.db.ListMessages(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return s.conversation(ctx, t, history)
}

// Send posts the user's message and returns the turn. On a responder
// failure the stored user message is returned together with the error.
func (s *Service) Send(ctx context.Context, ownerID, id, clientID, text string) (conversation.Turn, error) {
	t, e, err := s.ownedTangent(ctx, ownerID, id)
	if err != nil {
		return conversation.Turn{}, err
	}
	turn, err := s.engine.Send(ctx, t, e, clientID, text)
	if turn.User.ID != "" {
		s.publishMessage(ownerID, turn.User)
	}
	if err != nil {
		return turn, err
	}
	s.publishMessage(ownerID, turn.Reply)
	return turn, nil
}

// Retry regenerates the reply to an unanswered user message.
func (s *Service) Retry(ctx context.Context, ownerID, id string) (models.Message, error) {
	t, e, err := s.ownedTangent(ctx, ownerID, id)
	if err != nil {
		return models.Message{}, err
	}
	m, err := s.engine.Retry(ctx, t, e)
	if err != nil {
		return models.Message{}, err
	}
	s.publishMessage(ownerID, m)
	return m, nil
}

// DeleteTangent removes a tangent and all of its messages.
func (s *Service) DeleteTangent(ctx context.Context, ownerID, id string) error {
	t, _, err := s.ownedTangent(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteTangent(ctx, t.ID); err != nil {
		return err
	}
	s.events.Publish(sse.Event{Type: sse.TangentDeleted, OwnerID: ownerID, Data: map[string]string{
		"id":       t.ID,
		"entry_id": t.EntryID,
	}})
	return nil
}

func (s *Service) conversation(ctx context.Context, t models.Tangent, history []models.Message) (*Conversation, error) {
	st, err := s.engine.State(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &Conversation{Tangent: t, Messages: history, State: st.String()}, nil
}

func (s *Service) publishMessage(ownerID string, m models.Message) {
	s.events.Publish(sse.Event{Type: sse.MessageCreated, OwnerID: ownerID, Data: m})
}
