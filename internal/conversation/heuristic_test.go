package conversation

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
)

func fixed(i int) Picker { return PickerFunc(func(int) int { return i }) }

func TestKeyPhrase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"I'm not sure if I should push for that promotion or look elsewhere.", "promotion or look elsewhere"},
		{"Short one.", "Short one"},
		{"First part! And then the rest of it?", "the rest of it"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := KeyPhrase(tt.in); got != tt.want {
			t.Errorf("KeyPhrase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReply_IntensityWinsOverQuestion(t *testing.T) {
	h := NewHeuristicResponder(fixed(0))
	got := h.Reply("I feel devastated, why did this happen?")
	if !strings.HasPrefix(got, "I can feel the weight of that in your words.") {
		t.Errorf("reply = %q, want intensity validation", got)
	}
	if !strings.HasSuffix(got, "What does your body feel like when you sit with this?") {
		t.Errorf("reply = %q, want somatic follow-up", got)
	}
}

func TestReply_IntensityRegardlessOfLength(t *testing.T) {
	got := NewHeuristicResponder(fixed(2)).Reply("I feel anxious about this.")
	want := `That takes courage to express. I hear you when you say "feel anxious about this". ` +
		"What would it mean to give yourself permission to feel this fully?"
	if got != want {
		t.Errorf("reply = %q\nwant    %q", got, want)
	}
}

func TestReply_Question(t *testing.T) {
	got := NewHeuristicResponder(fixed(0)).Reply("Should I call my boss tomorrow?")
	if got != questionReply {
		t.Errorf("reply = %q", got)
	}
}

func TestReply_UncertaintyBeforeThemes(t *testing.T) {
	msg := "I'm not sure if I should push for that promotion or look elsewhere."
	got := NewHeuristicResponder(fixed(0)).Reply(msg)
	want := `I notice you're holding some uncertainty around "promotion or look elsewhere". ` +
		"That's okay - sometimes not knowing is its own kind of knowing. What would clarity look like for you here?"
	if got != want {
		t.Errorf("reply = %q", got)
	}
}

func TestReply_ThemesInOrder(t *testing.T) {
	h := NewHeuristicResponder(fixed(0))
	tests := []struct {
		msg    string
		prefix string
	}{
		{"Spent the whole day in a meeting with my family on the phone.", "It sounds like your work"},
		{"Had dinner with my sister and we laughed a lot tonight.", "Relationships can be such mirrors"},
		{"Our plan is to move somewhere warmer in a couple of years.", "I hear you thinking ahead"},
		{"We used to walk to the lake every single summer evening.", "There's wisdom in looking back"},
	}
	for _, tt := range tests {
		if got := h.Reply(tt.msg); !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("Reply(%q) = %q, want prefix %q", tt.msg, got, tt.prefix)
		}
	}
	if themes[0].name != "work" || themes[len(themes)-1].name != "past" {
		t.Error("theme order changed")
	}
}

func TestReply_SelfThemeFallsThrough(t *testing.T) {
	h := NewHeuristicResponder(fixed(0))

	got := h.Reply("Honestly I think I have been too hard on my own choices lately.")
	want := `I notice something important in "my own choices lately". What made you choose those particular words?`
	if got != want {
		t.Errorf("long self message = %q, want default reply", got)
	}

	// "i'm" matches before the future words, so the future template is skipped.
	got = h.Reply("I'm excited about my future plan and the next steps I want to take")
	if !strings.HasPrefix(got, "I notice something important in") {
		t.Errorf("self before future = %q, want default reply", got)
	}

	got = h.Reply("I am tired today.")
	want = `I'd love to hear more. When you say "I am tired today", what comes up for you? Don't filter - just let the thoughts flow.`
	if got != want {
		t.Errorf("short self message = %q, want expand reply", got)
	}
}

func TestReply_ShortMessage(t *testing.T) {
	got := NewHeuristicResponder(fixed(0)).Reply("Rain again.")
	want := `I'd love to hear more. When you say "Rain again", what comes up for you? Don't filter - just let the thoughts flow.`
	if got != want {
		t.Errorf("reply = %q", got)
	}
}

func TestReply_DefaultVariants(t *testing.T) {
	msg := "The rain kept falling on the roof all night long and the gutters overflowed."
	for i, tmpl := range defaults {
		got := NewHeuristicResponder(fixed(i)).Reply(msg)
		if !strings.Contains(got, `"and the gutters overflowed"`) {
			t.Errorf("variant %d missing key phrase: %q", i, got)
		}
		if !strings.HasPrefix(got, tmpl[:10]) {
			t.Errorf("variant %d = %q", i, got)
		}
	}
}

func TestReply_SeededPickerIsReproducible(t *testing.T) {
	msg := "The rain kept falling on the roof all night long and the gutters overflowed."
	a := NewHeuristicResponder(rand.New(rand.NewPCG(1, 2)))
	b := NewHeuristicResponder(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 5; i++ {
		if x, y := a.Reply(msg), b.Reply(msg); x != y {
			t.Fatalf("run %d: %q != %q", i, x, y)
		}
	}
}

func TestHeuristicResponder_Respond(t *testing.T) {
	got, err := NewHeuristicResponder(nil).Respond(context.Background(), Request{UserText: "Is this normal?"})
	if err != nil {
		t.Fatal(err)
	}
	if got != questionReply {
		t.Errorf("reply = %q", got)
	}
}
