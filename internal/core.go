package internal

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/unpack/internal/analysis"
	"github.com/starford/unpack/internal/blobstore"
	"github.com/starford/unpack/internal/conversation"
	"github.com/starford/unpack/internal/discovery"
	"github.com/starford/unpack/internal/extract"
	"github.com/starford/unpack/internal/journal"
	"github.com/starford/unpack/internal/llm"
	"github.com/starford/unpack/internal/overview"
	"github.com/starford/unpack/internal/pipeline"
	"github.com/starford/unpack/internal/store"
)

// core is the journal service and the stores behind it, shared by the HTTP
// and MCP entry points.
type core struct {
	db     *store.DB
	photos *blobstore.FS
	signer *blobstore.Signer
	svc    *journal.Service
}

func (a *application) setup() (*Config, *slog.Logger, error) {
	if a.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	out := a.logOutput
	if out == nil {
		out = os.Stdout
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return a.config, logger, nil
}

// newCore opens the stores and wires the capture pipeline and the companion.
// Callers close core.db.
func newCore(cfg *Config, logger *slog.Logger, opts ...journal.Option) (*core, error) {
	if err := os.MkdirAll(cfg.Photos.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create photos dir: %w", err)
	}
	photos, err := blobstore.NewFS(cfg.Photos.Path)
	if err != nil {
		return nil, fmt.Errorf("init photos: %w", err)
	}

	key := []byte(cfg.Photos.SigningKey)
	if len(key) == 0 {
		logger.Warn("photos.signing_key is empty; photo links will not survive a restart")
		key = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	}
	signer := blobstore.NewSigner(key, cfg.Photos.BaseURL, cfg.Photos.URLTTL)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	client := llm.New(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		VisionModel: cfg.OpenAI.VisionModel,
		Timeout:     cfg.OpenAI.Timeout,
		MaxRetries:  cfg.OpenAI.MaxRetries,
	})
	if !client.Available() {
		logger.Warn("openai.api_key is empty; extraction will fail and analysis uses fallbacks")
	}

	orch := pipeline.New(
		extract.NewVisionExtractor(client),
		overview.NewGenerator(client, logger),
		discovery.NewDiscoverer(client, logger),
		db,
		pipeline.WithAnnotator(analysis.NewAnnotator(client, logger)),
		pipeline.WithReviewThreshold(cfg.Pipeline.ReviewThreshold),
		pipeline.WithLogger(logger),
	)

	var responder conversation.Responder = conversation.NewHeuristicResponder(nil)
	if cfg.Companion.Responder == ResponderRemote && client.Available() {
		responder = conversation.NewRemoteResponder(client)
	}
	logger.Info("Companion responder selected", slog.String("responder", fmt.Sprintf("%T", responder)))
	engine := conversation.NewEngine(db, responder, conversation.WithLogger(logger))

	opts = append([]journal.Option{journal.WithLogger(logger)}, opts...)
	svc := journal.NewService(db, photos, signer, orch, engine, opts...)

	return &core{db: db, photos: photos, signer: signer, svc: svc}, nil
}
