// Package discovery splits journal text into a handful of emotional tangents.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/llm"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/parser"
)

// Bounds on the number of tangents returned for non-empty input.
const (
	MinTangents = 1
	MaxTangents = 5
)

// FallbackName names the single tangent returned when discovery fails.
const FallbackName = "Journal Entry"

const fallbackExcerptRunes = 100

const instructions = `Analyze this journal entry and identify distinct "tangents" - separate threads of thought or emotional themes. For each tangent, provide:
1. name: A brief 2-4 word label
2. emotion: The primary emotion (use Plutchik's wheel: joy, trust, fear, surprise, sadness, disgust, anger, anticipation, or their combinations)
3. excerpt: A key phrase from the text that represents this tangent

Identify 1-5 tangents depending on the content complexity.`

type tangentsResponse struct {
	Tangents []tangentItem `json:"tangents" jsonschema:"required"`
}

type tangentItem struct {
	Name    string `json:"name" jsonschema:"required,description=A brief 2-4 word label"`
	Emotion string `json:"emotion" jsonschema:"required,description=Plutchik emotion or combination"`
	Excerpt string `json:"excerpt" jsonschema:"required,description=Key phrase from the text"`
}

var tangentsSchema = llm.Schema{
	Name:        "Tangents",
	Description: "Distinct emotional threads in a journal entry",
	Definition:  llm.GenerateSchema[tangentsResponse](),
}

// Discoverer finds tangents in journal text.
type Discoverer struct {
	llm    llm.Completer
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(c llm.Completer, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{llm: c, logger: logger}
}

// Discover returns between one and five tangent candidates. Upstream
// failures never escape: they are logged and replaced by a single generic
// tangent quoting the head of the text.
func (d *Discoverer) Discover(ctx context.Context, text string) []models.TangentCandidate {
	out, err := d.discover(ctx, text)
	if err != nil {
		d.logger.Warn("discovery: using fallback tangent", slog.String("error", err.Error()))
		return []models.TangentCandidate{Fallback(text)}
	}
	return out
}

func (d *Discoverer) discover(ctx context.Context, text string) ([]models.TangentCandidate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", apperr.ErrDiscovery)
	}
	var resp tangentsResponse
	err := d.llm.CompleteJSON(ctx, llm.Request{
		Instructions: instructions,
		MaxTokens:    1000,
		Messages:     []llm.Message{{Role: llm.RoleUser, Text: text}},
	}, tangentsSchema, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrDiscovery, err)
	}
	out := normalize(resp.Tangents)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable tangents in model output", apperr.ErrDiscovery)
	}
	return out, nil
}

// normalize trims fields, lowercases emotions, drops candidates without a
// name or emotion and caps the list at MaxTangents.
func normalize(items []tangentItem) []models.TangentCandidate {
	out := make([]models.TangentCandidate, 0, len(items))
	for _, it := range items {
		c := models.TangentCandidate{
			Name:    strings.TrimSpace(it.Name),
			Emotion: strings.ToLower(strings.TrimSpace(it.Emotion)),
			Excerpt: strings.TrimSpace(it.Excerpt),
		}
		if c.Name == "" || c.Emotion == "" {
			continue
		}
		out = append(out, c)
		if len(out) == MaxTangents {
			break
		}
	}
	return out
}

// Fallback is the generic tangent used when discovery cannot run.
func Fallback(text string) models.TangentCandidate {
	return models.TangentCandidate{
		Name:    FallbackName,
		Emotion: models.EmotionReflection,
		Excerpt: parser.Truncate(text, fallbackExcerptRunes),
	}
}
