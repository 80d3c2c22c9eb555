// Package journal is the application service behind the HTTP and MCP
// surfaces: it enforces ownership, drives the capture pipeline and the
// tangent conversations, and announces changes over SSE.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/blobstore"
	"github.com/starford/unpack/internal/conversation"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/pipeline"
	"github.com/starford/unpack/internal/sse"
	"github.com/starford/unpack/internal/store"
)

// Publisher receives change notifications.
type Publisher interface {
	Publish(event sse.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event) {}

// Service coordinates the store, the photo store, the pipeline and the
// conversation engine.
type Service struct {
	db       store.Journal
	photos   blobstore.Provider
	signer   *blobstore.Signer
	pipeline *pipeline.Orchestrator
	engine   *conversation.Engine
	events   Publisher
	logger   *slog.Logger

	mu       sync.Mutex
	captures map[string]*tracked
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where change events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service.
func NewService(db store.Journal, photos blobstore.Provider, signer *blobstore.Signer,
	p *pipeline.Orchestrator, engine *conversation.Engine, opts ...Option) *Service {
	s := &Service{
		db:       db,
		photos:   photos,
		signer:   signer,
		pipeline: p,
		engine:   engine,
		events:   nopPublisher{},
		logger:   slog.Default(),
		captures: make(map[string]*tracked),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// EntryDetail is an entry with its tangents and signed photo URLs.
type EntryDetail struct {
	models.Entry
	PhotoURLs []string         `json:"photo_urls"`
	Tangents  []models.Tangent `json:"tangents"`
}

// ListEntries returns the owner's entries, newest first.
func (s *Service) ListEntries(ctx context.Context, ownerID string, limit, offset int) ([]models.Entry, error) {
	return s.db.ListEntries(ctx, ownerID, limit, offset)
}

// GetEntry returns an entry owned by ownerID.
func (s *Service) GetEntry(ctx context.Context, ownerID, id string) (*EntryDetail, error) {
	e, err := s.ownedEntry(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	tangents, err := s.db.ListTangents(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(e.PhotoKeys))
	for i, k := range e.PhotoKeys {
		urls[i] = s.signer.URL(k)
	}
	return &EntryDetail{Entry: e, PhotoURLs: urls, Tangents: tangents}, nil
}

// DeleteEntry removes an entry, its tangents, their messages and the
// entry's photos.
func (s *Service) DeleteEntry(ctx context.Context, ownerID, id string) error {
	e, err := s.ownedEntry(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteEntry(ctx, e.ID); err != nil {
		return err
	}
	for _, k := range e.PhotoKeys {
		if err := s.photos.Delete(k); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("delete entry: photo cleanup failed",
				slog.String("key", k), slog.String("error", err.Error()))
		}
	}
	s.events.Publish(sse.Event{Type: sse.EntryDeleted, OwnerID: ownerID, Data: map[string]string{"id": e.ID}})
	return nil
}

// Search runs a full-text search over the owner's entries.
func (s *Service) Search(ctx context.Context, ownerID, query string, limit int) ([]store.SearchResult, error) {
	return s.db.SearchEntries(ctx, ownerID, query, limit)
}

func (s *Service) ownedEntry(ctx context.Context, ownerID, id string) (models.Entry, error) {
	e, err := s.db.GetEntry(ctx, id)
	if err != nil {
		return models.Entry{}, err
	}
	if e.OwnerID != ownerID {
		return models.Entry{}, fmt.Errorf("entry %s: %w", id, apperr.ErrForbidden)
	}
	return e, nil
}

func (s *Service) ownedTangent(ctx context.Context, ownerID, id string) (models.Tangent, models.Entry, error) {
	t, err := s.db.GetTangent(ctx, id)
	if err != nil {
		return models.Tangent{}, models.Entry{}, err
	}
	if t.OwnerID != ownerID {
		return models.Tangent{}, models.Entry{}, fmt.Errorf("tangent %s: %w", id, apperr.ErrForbidden)
	}
	e, err := s.db.GetEntry(ctx, t.EntryID)
	if err != nil {
		return models.Tangent{}, models.Entry{}, err
	}
	return t, e, nil
}
