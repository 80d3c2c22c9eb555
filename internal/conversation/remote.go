package conversation

import (
	"context"
	"strings"

	"github.com/starford/unpack/internal/llm"
	"github.com/starford/unpack/internal/models"
)

const replyMaxTokens = 500

// RemoteResponder asks the language model for each reply.
type RemoteResponder struct {
	llm llm.Completer
}

var _ Responder = (*RemoteResponder)(nil)

// NewRemoteResponder creates a RemoteResponder.
func NewRemoteResponder(c llm.Completer) *RemoteResponder {
	return &RemoteResponder{llm: c}
}

// Respond implements Responder.
func (r *RemoteResponder) Respond(ctx context.Context, req Request) (string, error) {
	msgs := make([]llm.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		role := llm.RoleUser
		if m.Role == models.RoleAI {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Text: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: req.UserText})

	out, err := r.llm.Complete(ctx, llm.Request{
		Instructions: Persona + "\n\nContext for this tangent:\n" + req.SystemContext,
		Messages:     msgs,
		MaxTokens:    replyMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
