package question

import (
	"strings"
	"unicode"
)

// Question is the immutable input to the pipeline.
type Question struct {
	Raw        string
	Normalized string
	Language   string // BCP-47 tag, best effort ("pt", "en")
}

// New normalizes the raw text once; the result is never mutated.
func New(raw string, languageHint string) Question {
	normalized := Normalize(raw)
	lang := languageHint
	if lang == "" {
		lang = detectLanguage(normalized)
	}
	return Question{
		Raw:        raw,
		Normalized: normalized,
		Language:   lang,
	}
}

// Normalize lowercases, strips punctuation and collapses whitespace.
// Fingerprints and routing both key off this form, so it must be stable.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	lastSpace := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

var ptMarkers = map[string]bool{
	"quantos": true, "quantas": true, "qual": true, "quais": true,
	"quando": true, "onde": true, "como": true, "por": true, "que": true,
	"estão": true, "estao": true, "foi": true, "foram": true, "existem": true,
	"não": true, "nao": true, "ultimo": true, "último": true, "mais": true,
}

func detectLanguage(normalized string) string {
	for _, word := range strings.Fields(normalized) {
		if ptMarkers[word] {
			return "pt"
		}
	}
	return "en"
}
