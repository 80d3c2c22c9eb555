// Package overview writes the short empathetic summary shown after extraction.
package overview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/llm"
)

// Fallback replaces the overview whenever generation fails.
const Fallback = "We captured your thoughts. Take a moment to review before we discover the tangents within."

const instructions = "You are a reflective journaling assistant. Create a brief, validating overview " +
	"of the journal entry that clarifies the main themes without judgment. " +
	`Use "You wrote about..." language. Keep it to 2-3 sentences.`

// Generator summarizes journal text.
type Generator struct {
	llm    llm.Completer
	logger *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(c llm.Completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: c, logger: logger}
}

// Summarize returns a 2-3 sentence overview of text. It never fails: any
// upstream problem is logged and the fixed fallback is returned.
func (g *Generator) Summarize(ctx context.Context, text string) string {
	out, err := g.summarize(ctx, text)
	if err != nil {
		g.logger.Warn("overview: using fallback", slog.String("error", err.Error()))
		return Fallback
	}
	return out
}

func (g *Generator) summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", apperr.ErrSummary)
	}
	out, err := g.llm.Complete(ctx, llm.Request{
		Instructions: instructions,
		MaxTokens:    300,
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Text: "Create an overview for this journal entry:\n\n" + text,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrSummary, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty model output", apperr.ErrSummary)
	}
	return out, nil
}
