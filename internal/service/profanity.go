package service

import (
	"regexp"
	"strings"
)

// defaultProfanityWords seeds the filter when no custom list is
// configured.
var defaultProfanityWords = []string{
	"scammer", "scamming", "idiot", "moron", "stupid", "dumbass",
	"asshole", "bastard", "bitch", "fuck", "shit",
}

// ProfanityFilter masks banned words in chat messages. Matching is case
// insensitive and tolerates separator characters wedged between letters
// to dodge the filter, like "f.u.c.k" or "s-c-a-m-m-e-r".
type ProfanityFilter struct {
	patterns []*regexp.Regexp
}

// NewProfanityFilter builds a filter from a word list. An empty list
// falls back to the default words.
func NewProfanityFilter(words []string) *ProfanityFilter {
	if len(words) == 0 {
		words = defaultProfanityWords
	}

	// Allow common bypass separators between each letter.
	const gap = `[\s\.\-_*,!@#$%^&+=~]*`
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		letters := strings.Split(strings.ToLower(w), "")
		for i := range letters {
			letters[i] = regexp.QuoteMeta(letters[i])
		}
		p, err := regexp.Compile(`(?i)` + strings.Join(letters, gap))
		if err != nil {
			continue
		}
		patterns = append(patterns, p)
	}
	return &ProfanityFilter{patterns: patterns}
}

// Contains reports whether the text matches any banned word.
func (f *ProfanityFilter) Contains(text string) bool {
	for _, p := range f.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Mask replaces each banned word occurrence with asterisks of the same
// rune length, leaving the rest of the text untouched.
func (f *ProfanityFilter) Mask(text string) string {
	out := text
	for _, p := range f.patterns {
		out = p.ReplaceAllStringFunc(out, func(match string) string {
			return strings.Repeat("*", len([]rune(match)))
		})
	}
	return out
}
