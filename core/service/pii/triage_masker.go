// Package pii redacts personal data from inbound ticket text before
// anything downstream sees it. Masking is pure and total: the same
// input always yields the same output, and no input fails.
package pii

import "regexp"

// Replacement tokens
const (
	TokenEmail   = "[EMAIL]"
	TokenPhone   = "[PHONE]"
	TokenAddress = "[ADDRESS]"
	TokenIDNum   = "[IDNUM]"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Norwegian national identity numbers: 11 consecutive digits.
	// Checked before phone numbers so the longer run wins.
	idNumPattern = regexp.MustCompile(`\b\d{11}\b`)

	// Phone numbers: +country prefix with flexible grouping, or a bare
	// run of 8+ digits with optional space grouping (+47 123 45 678,
	// 12345678, 99 88 77 66). Dotted and dashed digit groups without a
	// prefix are left alone so dates survive masking.
	phonePattern = regexp.MustCompile(`\+\d{1,3}[ \-]?(?:\d[ \-]?){6,10}\d|\b(?:\d ?){7,10}\d\b`)

	// Street-address-like patterns: a capitalized word carrying a
	// street suffix (attached or as a separate word) followed by a
	// house number, e.g. "Storgata 12", "Bjørnsons vei 4B".
	addressPattern = regexp.MustCompile(`\b\p{Lu}\p{L}*(?:gate|gata|veien|vei|gatan|vägen|allé|alle|plass)\s+\d{1,4}[A-Za-z]?\b|\b\p{Lu}\p{L}+s?\s+(?:gate|gata|veien|vei|allé|alle|plass|street|st\.|road|rd\.|avenue|ave\.)\s+\d{1,4}[A-Za-z]?\b`)
)

// Masker redacts PII from free text.
type Masker struct{}

func NewMasker() *Masker {
	return &Masker{}
}

// Mask replaces emails, national identity numbers, phone numbers and
// street addresses with fixed tokens. Order matters: emails first so
// digits inside addresses of the form user123@host are gone before
// the numeric patterns run, ID numbers before phones so an 11-digit
// run is not half-eaten by the phone pattern.
func (m *Masker) Mask(text string) string {
	if text == "" {
		return text
	}
	out := emailPattern.ReplaceAllString(text, TokenEmail)
	out = idNumPattern.ReplaceAllString(out, TokenIDNum)
	out = addressPattern.ReplaceAllString(out, TokenAddress)
	out = phonePattern.ReplaceAllString(out, TokenPhone)
	return out
}
