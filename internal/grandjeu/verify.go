package grandjeu

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Casers keep state and are not safe for concurrent use, so each call
// builds its own.

// NormalizeCode is the canonical form of a secret code: trimmed, NFC,
// upper-cased.
func NormalizeCode(s string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}

// NormalizeAnswer is the canonical form of an answer: trimmed, NFC,
// lower-cased.
func NormalizeAnswer(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}

// MatchCode compares a submitted code with the stored one, ignoring case.
func MatchCode(input, code string) bool {
	return NormalizeCode(input) == NormalizeCode(code)
}

// MatchAnswer compares a submitted answer with the expected one, ignoring
// case and surrounding whitespace.
func MatchAnswer(input, answer string) bool {
	return NormalizeAnswer(input) == NormalizeAnswer(answer)
}
