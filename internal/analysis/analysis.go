// Package analysis annotates journal text with its sentiment, the emotions
// it carries, the sentences that stand out and questions worth asking next.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/llm"
	"github.com/starford/unpack/internal/models"
)

// Upper bounds on the annotation lists.
const (
	MaxEmotions     = 5
	MaxKeySentences = 5
	MaxFollowUps    = 3
)

const instructions = `You are a compassionate companion helping someone reflect on their journal entry. Use therapeutic approaches (CBT, ACT, IFS-informed) and validate emotions without toxic positivity.

Analyze the journal entry and provide:
1. sentiment: label (positive, negative or neutral) and score from 0.0 to 1.0
2. emotions: the 3-5 emotions you detect
3. key_sentences: 3-5 sentences or insights from the text that stand out
4. follow_up_questions: 2-3 thoughtful follow-up questions`

type insightsResponse struct {
	Sentiment         sentimentItem `json:"sentiment" jsonschema:"required"`
	Emotions          []string      `json:"emotions" jsonschema:"required,description=3-5 emotions detected in the entry"`
	KeySentences      []string      `json:"key_sentences" jsonschema:"required,description=3-5 sentences that stand out"`
	FollowUpQuestions []string      `json:"follow_up_questions" jsonschema:"required,description=2-3 follow-up questions"`
}

type sentimentItem struct {
	Label string  `json:"label" jsonschema:"required,enum=positive,enum=negative,enum=neutral"`
	Score float64 `json:"score" jsonschema:"required,description=Strength of the sentiment from 0.0 to 1.0"`
}

var insightsSchema = llm.Schema{
	Name:        "EntryInsights",
	Description: "Sentiment, emotions, key sentences and follow-up questions for a journal entry",
	Definition:  llm.GenerateSchema[insightsResponse](),
}

// Annotator produces insights for journal text.
type Annotator struct {
	llm    llm.Completer
	logger *slog.Logger
}

// NewAnnotator creates an Annotator.
func NewAnnotator(c llm.Completer, logger *slog.Logger) *Annotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{llm: c, logger: logger}
}

// Annotate returns the insights for text. Failures are logged and replaced
// by models.NeutralInsights.
func (a *Annotator) Annotate(ctx context.Context, text string) models.Insights {
	out, err := a.annotate(ctx, text)
	if err != nil {
		a.logger.Warn("analysis: using neutral insights", slog.String("error", err.Error()))
		return models.NeutralInsights()
	}
	return out
}

func (a *Annotator) annotate(ctx context.Context, text string) (models.Insights, error) {
	if strings.TrimSpace(text) == "" {
		return models.Insights{}, fmt.Errorf("%w: empty text", apperr.ErrAnalysis)
	}
	var resp insightsResponse
	err := a.llm.CompleteJSON(ctx, llm.Request{
		Instructions: instructions,
		MaxTokens:    800,
		Messages:     []llm.Message{{Role: llm.RoleUser, Text: text}},
	}, insightsSchema, &resp)
	if err != nil {
		return models.Insights{}, fmt.Errorf("%w: %w", apperr.ErrAnalysis, err)
	}
	return Normalize(models.Insights{
		Sentiment:         models.Sentiment{Label: resp.Sentiment.Label, Score: resp.Sentiment.Score},
		Emotions:          resp.Emotions,
		KeySentences:      resp.KeySentences,
		FollowUpQuestions: resp.FollowUpQuestions,
	}), nil
}

// Normalize puts insights into their stored shape. An unknown sentiment
// label becomes neutral at NeutralScore, scores are clamped to [0, 1],
// emotions are lowercased, blank items are dropped and every list is capped.
func Normalize(in models.Insights) models.Insights {
	return models.Insights{
		Sentiment:         normalizeSentiment(in.Sentiment),
		Emotions:          clean(in.Emotions, MaxEmotions, strings.ToLower),
		KeySentences:      clean(in.KeySentences, MaxKeySentences, nil),
		FollowUpQuestions: clean(in.FollowUpQuestions, MaxFollowUps, nil),
	}
}

func normalizeSentiment(s models.Sentiment) models.Sentiment {
	label := strings.ToLower(strings.TrimSpace(s.Label))
	switch label {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		return models.Sentiment{Label: models.SentimentNeutral, Score: models.NeutralScore}
	}
	score := s.Score
	if math.IsNaN(score) {
		score = models.NeutralScore
	}
	return models.Sentiment{Label: label, Score: min(max(score, 0), 1)}
}

func clean(items []string, limit int, transform func(string) string) []string {
	out := make([]string, 0, min(len(items), limit))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if transform != nil {
			it = transform(it)
		}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}
