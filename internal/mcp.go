package internal

import (
	"context"
	"log/slog"
	"os"

	"github.com/starford/unpack/internal/mcpserver"
)

// RunMCP serves the journal of cfg.MCP.OwnerID over MCP stdio. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}

	cfg, logger, err := app.setup()
	if err != nil {
		return err
	}

	c, err := newCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	logger.Info("Starting MCP server", slog.String("owner_id", cfg.MCP.OwnerID))
	return mcpserver.New(c.svc, cfg.MCP.OwnerID).ServeStdio()
}
