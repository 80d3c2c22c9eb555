package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/starford/unpack/internal/parser"
)

// Picker chooses a template variant. *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

// IntN implements Picker.
func (f PickerFunc) IntN(n int) int { return f(n) }

// Lexicons matched as lowercase substrings of the user's message.
var (
	intensityWords = []string{
		"hate", "love", "angry", "furious", "devastated", "ecstatic",
		"terrified", "anxious", "depressed", "hopeless", "amazing", "incredible",
	}
	uncertaintyWords = []string{"don't know", "not sure", "confused", "uncertain", "maybe", "might"}
)

type theme struct {
	name     string
	words    []string
	template string
}

// themes are checked in order; the first match wins. A theme without a
// template stops the search and leaves the reply to the later rules.
var themes = []theme{
	{
		name:     "work",
		words:    []string{"work", "job", "career", "boss", "colleague", "office", "promotion", "meeting"},
		template: `It sounds like your work is taking up real mental space right now. When you think about "%s", what's the feeling underneath the situation?`,
	},
	{
		name:     "relationship",
		words:    []string{"friend", "family", "partner", "mom", "dad", "brother", "sister", "relationship", "love"},
		template: `Relationships can be such mirrors for our own growth. I'm curious - in this dynamic you're describing, what do you need that you might not be expressing?`,
	},
	{
		// A self match ends the theme step without a reply of its own.
		name:  "self",
		words: []string{"myself", "i feel", "i think", "i am", "i'm", "my life", "who i"},
	},
	{
		name:     "future",
		words:    []string{"future", "tomorrow", "next", "plan", "goal", "dream", "hope", "want to"},
		template: `I hear you thinking ahead about "%s". What's one small thing about that future that excites you, and one thing that makes you nervous?`,
	},
	{
		name:     "past",
		words:    []string{"remember", "used to", "before", "when i was", "back then", "regret"},
		template: `There's wisdom in looking back. As you reflect on "%s", what would your current self want to tell that past version of you?`,
	},
}

var (
	validations = []string{
		`I can feel the weight of that in your words. "%s" - that sounds really significant.`,
		`Thank you for sharing something so real. When you say "%s", I sense there's a lot beneath the surface.`,
		`That takes courage to express. I hear you when you say "%s".`,
	}
	somaticFollowUps = []string{
		"What does your body feel like when you sit with this?",
		"If this feeling could speak, what would it want you to know?",
		"What would it mean to give yourself permission to feel this fully?",
	}
	defaults = []string{
		`I notice something important in "%s". What made you choose those particular words?`,
		`There's a thread here I want to pull on. When you wrote "%s", what were you feeling in that moment?`,
		`I'm sitting with what you shared. The phrase "%s" stands out to me. What's the story behind it?`,
	}
)

const (
	questionReply    = "That's a question worth sitting with. I'm curious what prompted you to ask that right now? What answer would feel most true to you?"
	uncertaintyReply = `I notice you're holding some uncertainty around "%s". That's okay - sometimes not knowing is its own kind of knowing. What would clarity look like for you here?`
	expandReply      = `I'd love to hear more. When you say "%s", what comes up for you? Don't filter - just let the thoughts flow.`
)

// shortMessageWords is the word count below which the user is asked to expand.
const shortMessageWords = 10

// HeuristicResponder replies offline with a fixed rule cascade over the
// latest user message. Only the variant choice within a rule is random.
type HeuristicResponder struct {
	pick Picker
}

var _ Responder = (*HeuristicResponder)(nil)

// NewHeuristicResponder creates a HeuristicResponder. A nil picker uses the
// global math/rand/v2 source.
func NewHeuristicResponder(p Picker) *HeuristicResponder {
	if p == nil {
		p = PickerFunc(rand.IntN)
	}
	return &HeuristicResponder{pick: p}
}

// Respond implements Responder.
func (h *HeuristicResponder) Respond(_ context.Context, req Request) (string, error) {
	return h.Reply(req.UserText), nil
}

// Reply applies the cascade to msg.
func (h *HeuristicResponder) Reply(msg string) string {
	lower := strings.ToLower(msg)
	key := KeyPhrase(msg)

	switch {
	case parser.ContainsAny(lower, intensityWords):
		v := h.choose(validations)
		return fmt.Sprintf(v, key) + " " + h.choose(somaticFollowUps)
	case strings.HasSuffix(strings.TrimSpace(msg), "?"):
		return questionReply
	case parser.ContainsAny(lower, uncertaintyWords):
		return fmt.Sprintf(uncertaintyReply, key)
	}

	if th, ok := matchTheme(lower); ok && th.template != "" {
		if strings.Contains(th.template, "%s") {
			return fmt.Sprintf(th.template, key)
		}
		return th.template
	}

	if len(parser.Words(msg)) < shortMessageWords {
		return fmt.Sprintf(expandReply, key)
	}
	return fmt.Sprintf(h.choose(defaults), key)
}

func matchTheme(lower string) (theme, bool) {
	for _, th := range themes {
		if parser.ContainsAny(lower, th.words) {
			return th, true
		}
	}
	return theme{}, false
}

func (h *HeuristicResponder) choose(variants []string) string {
	i := h.pick.IntN(len(variants))
	if i < 0 || i >= len(variants) {
		i = 0
	}
	return variants[i]
}
