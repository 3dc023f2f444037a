package extraction

import (
	"strings"

	"triage_server/core/domain"
)

// Language detection is a marker-word count over the supported
// languages. Markers are short function words that rarely appear
// outside their language; the highest count wins and ties fall back
// to the configured default.
var languageMarkers = map[domain.Language][]string{
	domain.LanguageNorwegian: {"jeg", "ikke", "og", "å", "er", "det", "har", "til", "på", "hei", "takk", "dere", "ønsker", "vennlig", "hilsen"},
	domain.LanguageEnglish:   {"the", "and", "not", "i", "to", "my", "is", "have", "please", "hello", "regards", "would", "thanks"},
	domain.LanguageSwedish:   {"jag", "inte", "och", "att", "är", "det", "har", "till", "hej", "tack", "vill", "vänliga", "hälsningar"},
}

// Detector detects the customer language from masked text.
type Detector struct {
	fallback domain.Language
}

func NewDetector(fallback domain.Language) *Detector {
	return &Detector{fallback: fallback}
}

// Detect tokenizes on whitespace and punctuation and counts marker
// hits per language. Zero hits or a tie returns the fallback.
func (d *Detector) Detect(text string) domain.Language {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '.', ',', '!', '?', ':', ';', '(', ')', '"':
			return true
		}
		return false
	})
	if len(words) == 0 {
		return d.fallback
	}

	seen := make(map[string]int, len(words))
	for _, w := range words {
		seen[w]++
	}

	counts := make(map[domain.Language]int, len(languageMarkers))
	for lang, markers := range languageMarkers {
		for _, m := range markers {
			counts[lang] += seen[m]
		}
	}

	best := d.fallback
	bestCount := 0
	tied := false
	for _, lang := range []domain.Language{domain.LanguageNorwegian, domain.LanguageEnglish, domain.LanguageSwedish} {
		c := counts[lang]
		if c > bestCount {
			best = lang
			bestCount = c
			tied = false
		} else if c == bestCount && c > 0 {
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return d.fallback
	}
	return best
}
