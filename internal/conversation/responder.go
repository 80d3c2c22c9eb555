// Package conversation runs the per-tangent companion chat: the state
// machine that guards seeding and turns, and the responders that write the
// companion's replies.
package conversation

import (
	"context"
	"fmt"

	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/parser"
)

// Request is everything a responder sees for one reply.
type Request struct {
	// SystemContext describes the tangent and its entry.
	SystemContext string
	// History holds the confirmed messages before UserText, oldest first.
	History  []models.Message
	UserText string
}

// Responder writes the companion's next reply.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// Persona is the system prompt shared by every remote reply.
const Persona = `You are Unpack, a warm and insightful journaling companion. Your role is to help users process their thoughts and emotions through reflective conversation.

Your frameworks:
- Mental Models (First Principles, Second-Order Thinking, Inversion)
- Stoic Philosophy (focus on what you can control)
- Plutchik's Wheel of Emotions (identify and name emotions)
- ABC Model from CBT (Activating event → Beliefs → Consequences)

Your modes:
1. WISE FRIEND (when emotions are intense): Validate feelings first, offer empathy, use gentle language
2. THINKING PARTNER (when emotions are calmer): Challenge assumptions, offer frameworks, ask probing questions

Guidelines:
- Ask ONE thoughtful deepening question at a time
- Validate before analyzing
- Use "I notice..." and "I'm curious about..." language
- Never lecture or give unsolicited advice
- Keep responses concise (2-3 sentences + 1 question)
- Mirror the user's language and pace`

const contextExcerptRunes = 500

const notAvailable = "Not available"

// TangentContext builds the context block sent with every reply.
func TangentContext(t models.Tangent, e models.Entry) string {
	text := parser.Truncate(e.ExtractedText, contextExcerptRunes)
	if text == "" {
		text = notAvailable
	}
	overview := e.Overview
	if overview == "" {
		overview = notAvailable
	}
	return fmt.Sprintf("Tangent: %s\nEmotion: %s\nFrom journal entry: %s\nOverview: %s\n",
		t.Name, t.Emotion, text, overview)
}

// SeedInstruction is the opening request that produces a tangent's first reply.
func SeedInstruction(t models.Tangent) string {
	return fmt.Sprintf("I just scanned a journal entry and this tangent %q was identified with the emotion %q. "+
		"Start our conversation by validating what I wrote and asking a thoughtful opening question.",
		t.Name, t.Emotion)
}

// KeyPhrase is the fragment of msg that replies mirror back.
func KeyPhrase(msg string) string {
	return parser.KeyPhrase(msg)
}
