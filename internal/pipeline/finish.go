package pipeline

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/unpack/internal/analysis"
	"github.com/starford/unpack/internal/discovery"
	"github.com/starford/unpack/internal/models"
)

// EntryWriter saves an entry and its tangents in one transaction.
type EntryWriter interface {
	CreateEntry(ctx context.Context, e models.Entry, tangents []models.TangentCandidate) (models.Entry, []models.Tangent, error)
}

// Draft is an analysed capture that has not been saved yet.
type Draft struct {
	OwnerID    string                    `json:"owner_id"`
	PhotoKeys  []string                  `json:"photo_keys"`
	Text       string                    `json:"text"`
	Overview   string                    `json:"overview"`
	Confidence float64                   `json:"confidence"`
	Tangents   []models.TangentCandidate `json:"tangents"`
	Insights   models.Insights           `json:"insights"`
}

// Validate checks the draft before it is saved.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.OwnerID, validation.Required),
		validation.Field(&d.Text, validation.Required),
		validation.Field(&d.Confidence, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&d.Tangents,
			validation.Required,
			validation.Length(discovery.MinTangents, discovery.MaxTangents),
			validation.Each(validation.By(validCandidate))),
	)
}

func validCandidate(v any) error {
	c, ok := v.(models.TangentCandidate)
	if !ok {
		return fmt.Errorf("unexpected tangent type %T", v)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Emotion, validation.Required),
	)
}

// Next is where the user goes after saving.
type Next string

const (
	NextConversation Next = "conversation"
	NextHome         Next = "home"
)

// Outcome is a saved capture.
type Outcome struct {
	Entry    models.Entry     `json:"entry"`
	Tangents []models.Tangent `json:"tangents"`
	Next     Next             `json:"next"`
	// TangentID is the tangent to open when Next is NextConversation.
	TangentID string `json:"tangent_id,omitempty"`
}

// Finish saves the draft and points the user at the first tangent.
func (o *Orchestrator) Finish(ctx context.Context, d Draft) (Outcome, error) {
	out, err := o.save(ctx, d)
	if err != nil {
		return Outcome{}, err
	}
	out.Next = NextConversation
	out.TangentID = out.Tangents[0].ID
	return out, nil
}

// Exit saves the draft exactly like Finish and sends the user home.
func (o *Orchestrator) Exit(ctx context.Context, d Draft) (Outcome, error) {
	out, err := o.save(ctx, d)
	if err != nil {
		return Outcome{}, err
	}
	out.Next = NextHome
	return out, nil
}

func (o *Orchestrator) save(ctx context.Context, d Draft) (Outcome, error) {
	if err := d.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	entry, tangents, err := o.writer.CreateEntry(ctx, models.Entry{
		OwnerID:       d.OwnerID,
		PhotoKeys:     d.PhotoKeys,
		ExtractedText: d.Text,
		Overview:      d.Overview,
		Confidence:    d.Confidence,
		Insights:      analysis.Normalize(d.Insights),
	}, d.Tangents)
	if err != nil {
		return Outcome{}, fmt.Errorf("save entry: %w", err)
	}
	if len(tangents) == 0 {
		return Outcome{}, fmt.Errorf("save entry: no tangents stored for %s", entry.ID)
	}
	return Outcome{Entry: entry, Tangents: tangents}, nil
}
