// Package pipeline sequences a capture: extraction of every page, the
// manual-review gate, overview, tangent discovery and annotation, and the
// atomic save of the resulting entry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/extract"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/parser"
)

// DefaultReviewThreshold is the mean confidence below which extracted text
// goes to manual review.
const DefaultReviewThreshold = 0.6

// ErrReviewRequired is returned by a Corrector that cannot supply text.
var ErrReviewRequired = errors.New("manual review required")

// Route is the branch taken after extraction.
type Route string

const (
	RouteProceed      Route = "proceed"
	RouteManualReview Route = "manual_review"
)

// Extraction is the combined result of reading every page.
type Extraction struct {
	// Pages are in the order the pages were given.
	Pages      []models.ExtractionResult `json:"pages"`
	Text       string                    `json:"text"`
	Confidence float64                   `json:"confidence"`
	Route      Route                     `json:"route"`
}

// Analysis is the overview, tangents and insights for a text.
type Analysis struct {
	Overview string                    `json:"overview"`
	Tangents []models.TangentCandidate `json:"tangents"`
	Insights models.Insights           `json:"insights"`
}

// Summarizer writes an overview. It must not fail.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// TangentFinder discovers tangents. It must not fail.
type TangentFinder interface {
	Discover(ctx context.Context, text string) []models.TangentCandidate
}

// Annotator writes the entry insights. It must not fail.
type Annotator interface {
	Annotate(ctx context.Context, text string) models.Insights
}

type neutralAnnotator struct{}

func (neutralAnnotator) Annotate(context.Context, string) models.Insights {
	return models.NeutralInsights()
}

// Corrector supplies edited text for a low-confidence extraction.
type Corrector interface {
	Correct(ctx context.Context, ex Extraction) (string, error)
}

// CorrectorFunc adapts a function to Corrector.
type CorrectorFunc func(ctx context.Context, ex Extraction) (string, error)

// Correct implements Corrector.
func (f CorrectorFunc) Correct(ctx context.Context, ex Extraction) (string, error) {
	return f(ctx, ex)
}

// Orchestrator runs the capture pipeline.
type Orchestrator struct {
	extractor extract.Extractor
	overview  Summarizer
	discovery TangentFinder
	annotator Annotator
	writer    EntryWriter
	threshold float64
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReviewThreshold overrides DefaultReviewThreshold.
func WithReviewThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

// WithAnnotator sets the insight stage. Without it every entry gets
// models.NeutralInsights.
func WithAnnotator(a Annotator) Option {
	return func(o *Orchestrator) { o.annotator = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator.
func New(x extract.Extractor, s Summarizer, d TangentFinder, w EntryWriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		extractor: x,
		overview:  s,
		discovery: d,
		annotator: neutralAnnotator{},
		writer:    w,
		threshold: DefaultReviewThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract reads all pages concurrently and reassembles the results in page
// order. The first failure cancels the remaining pages. Blank pages, which
// only extractors other than extract.VisionExtractor report, are left out of
// the text but still count toward the mean confidence.
func (o *Orchestrator) Extract(ctx context.Context, pages []extract.Page) (Extraction, error) {
	if len(pages) == 0 {
		return Extraction{}, fmt.Errorf("%w: no pages", apperr.ErrExtraction)
	}

	results := make([]models.ExtractionResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pages {
		g.Go(func() error {
			res, err := o.extractor.Extract(gctx, p)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Extraction{}, ctxErr
		}
		if !errors.Is(err, apperr.ErrExtraction) {
			err = fmt.Errorf("%w: %w", apperr.ErrExtraction, err)
		}
		return Extraction{}, err
	}

	texts := make([]string, len(results))
	var sum float64
	for i, r := range results {
		texts[i] = r.Text
		sum += r.Confidence
	}
	ex := Extraction{
		Pages:      results,
		Text:       parser.JoinPages(texts),
		Confidence: sum / float64(len(results)),
	}
	ex.Route = o.RouteFor(ex.Confidence)
	o.logger.Debug("pipeline: extracted",
		slog.Int("pages", len(pages)),
		slog.Float64("confidence", ex.Confidence),
		slog.String("route", string(ex.Route)))
	return ex, nil
}

// RouteFor applies the review threshold. A mean exactly at the threshold
// proceeds.
func (o *Orchestrator) RouteFor(confidence float64) Route {
	if confidence < o.threshold {
		return RouteManualReview
	}
	return RouteProceed
}

// Analyze writes the overview, then discovers tangents, then annotates the
// text. A cancelled context yields its error and no partial result.
func (o *Orchestrator) Analyze(ctx context.Context, text string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	overview := o.overview.Summarize(ctx, text)
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	tangents := o.discovery.Discover(ctx, text)
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	insights := o.annotator.Annotate(ctx, text)
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	return Analysis{Overview: overview, Tangents: tangents, Insights: insights}, nil
}

// Process runs extraction, the review gate and analysis, returning an
// unsaved draft. The corrector is consulted only on the manual-review route.
func (o *Orchestrator) Process(ctx context.Context, pages []extract.Page, c Corrector) (Draft, error) {
	ex, err := o.Extract(ctx, pages)
	if err != nil {
		return Draft{}, err
	}

	text := ex.Text
	if ex.Route == RouteManualReview {
		if c == nil {
			return Draft{}, ErrReviewRequired
		}
		text, err = c.Correct(ctx, ex)
		if err != nil {
			return Draft{}, err
		}
	}

	a, err := o.Analyze(ctx, text)
	if err != nil {
		return Draft{}, err
	}

	keys := make([]string, len(pages))
	for i, p := range pages {
		keys[i] = p.Key
	}
	return Draft{
		PhotoKeys:  keys,
		Text:       text,
		Overview:   a.Overview,
		Confidence: ex.Confidence,
		Tangents:   a.Tangents,
		Insights:   a.Insights,
	}, nil
}
