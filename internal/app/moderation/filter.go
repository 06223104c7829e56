/*
Package moderation provides the profanity gate applied to outgoing chat text.

Detection is delegated to the go-away lexicon, which normalizes leetspeak and
other common obfuscations and carries its own false-positive list, so embedded
substrings of harmless words never trigger it. The chat session consumes the
Filter as a plain predicate, which keeps it swappable in tests and deployments.
*/
package moderation

import (
	"strings"
	"unicode"

	goaway "github.com/TwiN/go-away"
)

// Filter rejects text containing profanity, matched against the go-away lexicon
// plus any deployment-specific extra words.
type Filter struct {
	detector *goaway.ProfanityDetector
	extra    map[string]struct{}
}

// NewFilter constructs a Filter from the default lexicon plus any extra words.
// Extra words are matched whole, case-insensitively.
func NewFilter(extra ...string) *Filter {
	words := make(map[string]struct{}, len(extra))
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words[w] = struct{}{}
		}
	}

	return &Filter{
		detector: goaway.NewProfanityDetector(),
		extra:    words,
	}
}

// IsOffensive reports whether the text contains a rejected word.
// Pure and synchronous; suitable to run inline before every broadcast.
func (f *Filter) IsOffensive(text string) bool {
	if f.detector.IsProfane(text) {
		return true
	}

	if len(f.extra) == 0 {
		return false
	}

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range fields {
		if _, ok := f.extra[word]; ok {
			return true
		}
	}
	return false
}
