// Package parser provides the small text utilities the pipeline relies on:
// word and sentence splitting, unclear-marker counting and page joining.
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/unpack/internal/models"
)

// UnclearMarker is the token the vision model emits for unreadable words.
const UnclearMarker = "[unclear]"

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	unclearRe       = regexp.MustCompile(`\[unclear\]`)
)

// Words splits s on runs of whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}

// Sentences splits s on runs of '.', '!' and '?' and returns the non-blank
// trimmed pieces.
func Sentences(s string) []string {
	parts := sentenceSplitRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// KeyPhrase returns the last four words of the final sentence of msg.
// A message with no sentence text falls back to the whole trimmed message.
func KeyPhrase(msg string) string {
	last := strings.TrimSpace(msg)
	if sentences := Sentences(msg); len(sentences) > 0 {
		last = sentences[len(sentences)-1]
	}
	words := Words(last)
	if len(words) > 4 {
		words = words[len(words)-4:]
	}
	return strings.Join(words, " ")
}

// CountUnclear returns how many unclear markers appear in text.
func CountUnclear(text string) int {
	return len(unclearRe.FindAllStringIndex(text, -1))
}

// ContainsAny reports whether any term occurs in s as a substring.
// Callers pass s already lowercased.
func ContainsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// JoinPages joins page texts with the visible page separator, skipping
// pages whose text is blank.
func JoinPages(texts []string) string {
	kept := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, models.PageSeparator)
}
