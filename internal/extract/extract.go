// Package extract turns one photographed journal page into text and a
// confidence score.
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/llm"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/parser"
)

// MinConfidence is the floor applied to any page that produced words.
const MinConfidence = 0.3

const extractInstruction = "Extract all handwritten text from this journal page. " +
	"Return ONLY the extracted text, preserving line breaks and paragraph structure. " +
	"If you cannot read certain words clearly, indicate with [unclear]."

// Page is a single photographed page.
type Page struct {
	Key         string
	Data        []byte
	ContentType string
}

// Extractor reads text from a page. Implementations must fail with an error
// wrapping apperr.ErrExtraction rather than return a fabricated result. An
// extractor that can tell a blank page from a failed read may return empty
// text at confidence 0; VisionExtractor cannot, so empty model output fails.
type Extractor interface {
	Extract(ctx context.Context, page Page) (models.ExtractionResult, error)
}

// Confidence scores a page from its unclear-marker and word counts:
// max(0.3, 1 - 2*unclear/words). A page with no words scores 0.
func Confidence(unclearCount, wordCount int) float64 {
	if wordCount <= 0 {
		return 0
	}
	c := 1 - 2*float64(unclearCount)/float64(wordCount)
	if c < MinConfidence {
		return MinConfidence
	}
	return c
}

// Score computes the confidence of extracted text.
func Score(text string) float64 {
	return Confidence(parser.CountUnclear(text), len(parser.Words(text)))
}

// VisionExtractor asks a vision-capable model to transcribe the page.
type VisionExtractor struct {
	llm llm.Completer
}

// NewVisionExtractor creates an extractor over the given completer.
func NewVisionExtractor(c llm.Completer) *VisionExtractor {
	return &VisionExtractor{llm: c}
}

// Extract implements Extractor.
func (e *VisionExtractor) Extract(ctx context.Context, page Page) (models.ExtractionResult, error) {
	if len(page.Data) == 0 {
		return models.ExtractionResult{}, fmt.Errorf("%w: page %q is empty", apperr.ErrExtraction, page.Key)
	}
	text, err := e.llm.Complete(ctx, llm.Request{
		Vision:    true,
		MaxTokens: 2000,
		Messages: []llm.Message{{
			Role:     llm.RoleUser,
			Text:     extractInstruction,
			ImageURL: DataURL(page),
		}},
	})
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("%w: page %q: %w", apperr.ErrExtraction, page.Key, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ExtractionResult{}, fmt.Errorf("%w: page %q: no text annotation", apperr.ErrExtraction, page.Key)
	}
	return models.ExtractionResult{Text: text, Confidence: Score(text)}, nil
}

// DataURL encodes the page as an inline base64 data URL.
func DataURL(page Page) string {
	ct := page.ContentType
	if ct == "" || !strings.HasPrefix(ct, "image/") {
		ct = http.DetectContentType(page.Data)
	}
	if !strings.HasPrefix(ct, "image/") {
		ct = "image/jpeg"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(page.Data)
}
