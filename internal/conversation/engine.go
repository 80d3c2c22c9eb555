package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/models"
)

// ErrEmptyMessage is returned when the user sends only whitespace.
var ErrEmptyMessage = errors.New("message is empty")

// MessageStore persists conversation messages.
type MessageStore interface {
	ListMessages(ctx context.Context, tangentID string) ([]models.Message, error)
	AddMessage(ctx context.Context, m models.Message) error
}

// Turn is the outcome of one Send. User is always set once the user's
// message was stored; Reply is zero when the responder failed.
type Turn struct {
	User  models.Message
	Reply models.Message
	// History is the visible conversation after the turn.
	History []models.Message
}

// Engine guards the per-tangent state machine and allows at most one
// responder call per tangent at a time.
type Engine struct {
	store     MessageStore
	responder Responder
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine.
func NewEngine(store MessageStore, r Responder, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		responder: r,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
		inflight:  make(map[string]struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State reports the tangent's current state, counting a running responder
// call as AwaitingAI.
func (e *Engine) State(ctx context.Context, tangentID string) (State, error) {
	if e.busy(tangentID) {
		return AwaitingAI, nil
	}
	history, err := e.store.ListMessages(ctx, tangentID)
	if err != nil {
		return Unseeded, err
	}
	return StateOf(history), nil
}

// Seed writes the opening companion message of an unseeded tangent.
func (e *Engine) Seed(ctx context.Context, t models.Tangent, entry models.Entry) (models.Message, error) {
	release, err := e.acquire(t.ID)
	if err != nil {
		return models.Message{}, err
	}
	defer release()

	history, err := e.store.ListMessages(ctx, t.ID)
	if err != nil {
		return models.Message{}, err
	}
	if s := StateOf(history); s != Unseeded {
		return models.Message{}, fmt.Errorf("%w: seed in state %s", apperr.ErrInvalidState, s)
	}
	return e.reply(ctx, t, Request{
		SystemContext: TangentContext(t, entry),
		UserText:      SeedInstruction(t),
	})
}

// Send stores the user's message, then asks the responder for a reply.
// When the responder fails the stored user message is still returned,
// alongside an error wrapping apperr.ErrResponse.
func (e *Engine) Send(ctx context.Context, t models.Tangent, entry models.Entry, clientID, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}
	release, err := e.acquire(t.ID)
	if err != nil {
		return Turn{}, err
	}
	defer release()

	history, err := e.store.ListMessages(ctx, t.ID)
	if err != nil {
		return Turn{}, err
	}
	if s := StateOf(history); s != AwaitingUser {
		return Turn{}, fmt.Errorf("%w: send in state %s", apperr.ErrInvalidState, s)
	}
	if clientID == "" {
		clientID = ulid.Make().String()
	}

	tl := NewTimeline(history)
	pending := tl.AddPending(t.ID, clientID, text, e.now())

	user := pending
	user.ID = ulid.Make().String()
	user.Status = models.StatusConfirmed
	if err := e.store.AddMessage(ctx, user); err != nil {
		tl.Drop(clientID)
		return Turn{History: tl.Messages()}, err
	}
	tl.Confirm(user)

	reply, err := e.reply(ctx, t, Request{
		SystemContext: TangentContext(t, entry),
		History:       history,
		UserText:      text,
	})
	if err != nil {
		return Turn{User: user, History: tl.Messages()}, err
	}
	tl.Confirm(reply)
	return Turn{User: user, Reply: reply, History: tl.Messages()}, nil
}

// Retry answers a user message left without a reply by a failed Send.
func (e *Engine) Retry(ctx context.Context, t models.Tangent, entry models.Entry) (models.Message, error) {
	release, err := e.acquire(t.ID)
	if err != nil {
		return models.Message{}, err
	}
	defer release()

	history, err := e.store.ListMessages(ctx, t.ID)
	if err != nil {
		return models.Message{}, err
	}
	if s := StateOf(history); s != AwaitingAI {
		return models.Message{}, fmt.Errorf("%w: retry in state %s", apperr.ErrInvalidState, s)
	}
	last := history[len(history)-1]
	return e.reply(ctx, t, Request{
		SystemContext: TangentContext(t, entry),
		History:       history[:len(history)-1],
		UserText:      last.Content,
	})
}

func (e *Engine) reply(ctx context.Context, t models.Tangent, req Request) (models.Message, error) {
	text, err := e.responder.Respond(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		e.logger.Warn("conversation: responder failed",
			slog.String("tangent_id", t.ID), slog.String("error", err.Error()))
		return models.Message{}, fmt.Errorf("%w: %w", apperr.ErrResponse, err)
	}
	m := models.Message{
		ID:        ulid.Make().String(),
		TangentID: t.ID,
		Role:      models.RoleAI,
		Content:   text,
		CreatedAt: e.now(),
		Status:    models.StatusConfirmed,
	}
	if err := e.store.AddMessage(ctx, m); err != nil {
		return models.Message{}, fmt.Errorf("store reply: %w", err)
	}
	return m, nil
}

func (e *Engine) acquire(tangentID string) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.inflight[tangentID]; ok {
		return nil, fmt.Errorf("%w: tangent %s", apperr.ErrBusy, tangentID)
	}
	e.inflight[tangentID] = struct{}{}
	return func() {
		e.mu.Lock()
		delete(e.inflight, tangentID)
		e.mu.Unlock()
	}, nil
}

func (e *Engine) busy(tangentID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[tangentID]
	return ok
}
