package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/unpack/internal/discovery"
	"github.com/starford/unpack/internal/journal"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/pipeline"
	"github.com/starford/unpack/internal/store"
)

// PhotosRequest names uploaded photos in page order.
type PhotosRequest struct {
	Photos []string `json:"photos" example:"images/local/0b6c.jpg" validate:"required"`
}

// Validate implements validation.Validatable.
func (r PhotosRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Photos, validation.Required, validation.Each(validation.Required)),
	)
}

// ProcessRequest runs a whole capture. CorrectedText is used when the
// extraction needs manual review.
type ProcessRequest struct {
	Photos        []string `json:"photos" validate:"required"`
	CorrectedText string   `json:"corrected_text,omitempty"`
}

// Validate implements validation.Validatable.
func (r ProcessRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Photos, validation.Required, validation.Each(validation.Required)),
	)
}

// AnalyzeRequest carries the (possibly corrected) entry text.
type AnalyzeRequest struct {
	Text string `json:"text" example:"Rain all day..." validate:"required"`
}

// Validate implements validation.Validatable.
func (r AnalyzeRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Text, validation.Required))
}

// DraftRequest is an analysed capture submitted for saving.
type DraftRequest struct {
	PhotoKeys  []string                  `json:"photo_keys"`
	Text       string                    `json:"text" validate:"required"`
	Overview   string                    `json:"overview"`
	Confidence float64                   `json:"confidence" example:"0.9"`
	Tangents   []models.TangentCandidate `json:"tangents" validate:"required"`
	Insights   models.Insights           `json:"insights"`
}

// Validate implements validation.Validatable.
func (r DraftRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Tangents, validation.Required,
			validation.Length(discovery.MinTangents, discovery.MaxTangents)),
	)
}

func (r DraftRequest) draft() pipeline.Draft {
	return pipeline.Draft{
		PhotoKeys:  r.PhotoKeys,
		Text:       r.Text,
		Overview:   r.Overview,
		Confidence: r.Confidence,
		Tangents:   r.Tangents,
		Insights:   r.Insights,
	}
}

// SendMessageRequest is a user turn.
type SendMessageRequest struct {
	Content  string `json:"content" example:"I keep thinking about it" validate:"required"`
	ClientID string `json:"client_id,omitempty" example:"c-1"`
}

// ExtractionResponse is the result of reading a capture's pages.
type ExtractionResponse struct {
	Pages      []models.ExtractionResult `json:"pages"`
	Text       string                    `json:"text"`
	Confidence float64                   `json:"confidence" example:"0.82"`
	Route      pipeline.Route            `json:"route" example:"proceed"`
}

// AnalysisResponse is an entry's overview, tangents and insights.
type AnalysisResponse struct {
	Overview string                    `json:"overview"`
	Tangents []models.TangentCandidate `json:"tangents"`
	Insights models.Insights           `json:"insights"`
}

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []models.Entry `json:"entries" validate:"required"`
}

// EntryDetail is an entry with signed photo URLs and its tangents.
type EntryDetail = journal.EntryDetail

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}

// ConversationResponse is a tangent with its message history.
type ConversationResponse = journal.Conversation

// TurnResponse is returned after a user message was answered.
type TurnResponse struct {
	Message models.Message `json:"message"`
	Reply   models.Message `json:"reply"`
}

// FailedTurnResponse is returned when the companion could not answer. The
// user's message is kept and can be answered with a retry.
type FailedTurnResponse struct {
	Error   string         `json:"error"`
	Message models.Message `json:"message"`
}

// PhotoUploadResponse is returned after a successful photo upload.
type PhotoUploadResponse = journal.UploadedPhoto
