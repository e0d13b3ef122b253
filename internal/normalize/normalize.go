// Package normalize turns free-text exercise and template names into the
// comparison key used for identity across the tracker.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Display trims raw and collapses every whitespace run to a single space.
func Display(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Name returns the normalized key for raw: whitespace collapsed, lowercased,
// and stripped of diacritics. Name(Name(x)) == Name(x).
func Name(raw string) string {
	lowered := strings.ToLower(Display(raw))
	// a fresh chain per call, transform.Chain is not safe for concurrent use
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lowered)
	if err != nil {
		return lowered
	}
	return out
}

// Equal reports whether a and b name the same entity.
func Equal(a, b string) bool {
	return Name(a) == Name(b)
}
