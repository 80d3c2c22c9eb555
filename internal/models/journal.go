// Package models defines the domain types for Unpack.
package models

import "time"

// Emotion tags drawn from Plutchik's wheel. Named combinations (for example
// "optimism" or "love") are stored as free strings.
const (
	EmotionJoy          = "joy"
	EmotionTrust        = "trust"
	EmotionFear         = "fear"
	EmotionSurprise     = "surprise"
	EmotionSadness      = "sadness"
	EmotionDisgust      = "disgust"
	EmotionAnger        = "anger"
	EmotionAnticipation = "anticipation"

	// EmotionReflection tags the generic fallback tangent.
	EmotionReflection = "reflection"
)

// PrimaryEmotions lists the eight Plutchik primaries.
var PrimaryEmotions = []string{
	EmotionJoy, EmotionTrust, EmotionFear, EmotionSurprise,
	EmotionSadness, EmotionDisgust, EmotionAnger, EmotionAnticipation,
}

// PageSeparator is placed between the texts of consecutive pages.
const PageSeparator = "\n\n---\n\n"

// Photo is an opaque reference to an uploaded page image.
type Photo struct {
	Key string `json:"key"`
}

// ExtractionResult is the text read from one page and how much we trust it.
type ExtractionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Entry is one capture session: its photos, combined text and overview.
type Entry struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
	PhotoKeys     []string  `json:"photo_keys"`
	ExtractedText string    `json:"extracted_text"`
	Overview      string    `json:"overview"`
	Confidence    float64   `json:"confidence"`
	Insights      Insights  `json:"insights"`
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// NeutralScore is the sentiment score paired with SentimentNeutral when
// nothing better is known.
const NeutralScore = 0.5

// Sentiment is the overall tone of an entry. Score is in [0, 1].
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Insights annotate an entry's text.
type Insights struct {
	Sentiment         Sentiment `json:"sentiment"`
	Emotions          []string  `json:"emotions"`
	KeySentences      []string  `json:"key_sentences"`
	FollowUpQuestions []string  `json:"follow_up_questions"`
}

// NeutralInsights is the annotation used when analysis cannot run.
func NeutralInsights() Insights {
	return Insights{
		Sentiment:         Sentiment{Label: SentimentNeutral, Score: NeutralScore},
		Emotions:          []string{},
		KeySentences:      []string{},
		FollowUpQuestions: []string{},
	}
}

// TangentCandidate is a discovered thread before it is persisted.
type TangentCandidate struct {
	Name    string `json:"name"`
	Emotion string `json:"emotion"`
	Excerpt string `json:"excerpt"`
}

// Tangent is one emotional or topical thread within an entry.
type Tangent struct {
	ID         string    `json:"id"`
	EntryID    string    `json:"entry_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Emotion    string    `json:"emotion"`
	Excerpt    string    `json:"excerpt"`
	Interacted bool      `json:"interacted"`
	CreatedAt  time.Time `json:"created_at"`
}

// Message roles.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Message status. A pending message has been shown to the user but not yet
// acknowledged by the store; it is replaced by its confirmed counterpart
// carrying the same ClientID.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Message is one turn of a tangent conversation.
type Message struct {
	ID        string    `json:"id"`
	TangentID string    `json:"tangent_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ClientID  string    `json:"client_id,omitempty"`
	Status    string    `json:"status"`
}

// Pending reports whether the message still awaits confirmation.
func (m Message) Pending() bool {
	return m.Status == StatusPending
}
