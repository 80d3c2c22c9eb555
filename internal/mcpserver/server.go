// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes one owner's Unpack journal to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/journal"
	"github.com/starford/unpack/internal/pipeline"
)

const defaultLimit = 20

// Server wraps the MCP server with Unpack tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *journal.Service
	ownerID string
}

// New creates a new MCP server acting on ownerID's journal.
func New(svc *journal.Service, ownerID string) *Server {
	s := &Server{svc: svc, ownerID: ownerID}

	s.mcp = server.NewMCPServer(
		"Unpack",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List journal entries, newest first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 20)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read a journal entry: extracted text, overview, insights and its tangents."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("read_conversation",
		mcp.WithDescription("Read the conversation held within one tangent of an entry."),
		mcp.WithString("tangent_id", mcp.Required(), mcp.Description("Tangent ID")),
	), s.readConversation)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through entry text and overviews."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("upload_page",
		mcp.WithDescription("Store a photographed journal page from a data URI or an http(s) URL. "+
			"Returns the photo key to pass to capture_entry."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:image/...;base64,... or http(s) URL")),
	), s.uploadPage)

	s.mcp.AddTool(mcp.NewTool("capture_entry",
		mcp.WithDescription("Turn uploaded pages into a saved entry: extract text, summarize, discover tangents, annotate. "+
			"Low-confidence pages need corrected_text."),
		mcp.WithArray("photos", mcp.Required(), mcp.Description("Photo keys in page order"),
			mcp.WithStringItems()),
		mcp.WithString("corrected_text", mcp.Description("Text to use when extraction needs review")),
	), s.captureEntry)

	// Resource: companion persona.
	s.mcp.AddResource(
		mcp.NewResource(PersonaURI, "Companion Persona",
			mcp.WithResourceDescription("How the journaling companion talks within a tangent."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPersonaResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrForbidden):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, pipeline.ErrReviewRequired):
		return mcp.NewToolResultError("extracted text is unreliable; call again with corrected_text")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	entries, err := s.svc.ListEntries(ctx, s.ownerID, limit, req.GetInt("offset", 0))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(entries)
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.svc.GetEntry(ctx, s.ownerID, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(e)
}

func (s *Server) readConversation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("tangent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Messages(ctx, s.ownerID, id)
	if err != nil {
		return toolError(err), nil
	}
	if len(c.Messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("tangent %q has no conversation yet", c.Tangent.Name)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", c.Tangent.Name, c.Tangent.Emotion)
	for _, m := range c.Messages {
		fmt.Fprintf(&b, "**%s:** %s\n\n", m.Role, m.Content)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	results, err := s.svc.Search(ctx, s.ownerID, query, limit)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) captureEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := req.RequireStringSlice("photos")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(keys) == 0 {
		return mcp.NewToolResultError("photos must not be empty"), nil
	}
	d, err := s.svc.Process(ctx, s.ownerID, keys, req.GetString("corrected_text", ""))
	if err != nil {
		return toolError(err), nil
	}
	out, err := s.svc.Exit(ctx, s.ownerID, d)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out)
}

func (s *Server) readPersonaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PersonaURI,
			MIMEType: "text/markdown",
			Text:     PersonaDocument,
		},
	}, nil
}
