// Package textutil segments free-text queries into word spans and folds
// words into case- and accent-insensitive lookup keys.
//
// Every extraction pass and every gazetteer entry goes through the same
// segmentation, so a gazetteer key always lines up with the words of a query.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Apostrophes recognised as elision markers.
const (
	Apostrophe            = '\''
	TypographicApostrophe = '’'
)

// Span is a word of the input, addressed by byte offsets.
type Span struct {
	Start int // Byte offset of the first rune (inclusive)
	End   int // Byte offset after the last rune (exclusive)
	Text  string
}

// Spans splits s into words. A word is a maximal run of letters and
// combining marks, optionally joined by inner hyphens ("Saint-Étienne",
// "Est-ce"). Leading and trailing hyphens are not part of a word.
// Everything else, apostrophes included, separates words.
//
// Returns an empty slice, not nil, when s holds no word.
func Spans(s string) []Span {
	spans := []Span{}
	start := -1
	lastLetterEnd := -1

	flush := func() {
		if start >= 0 && lastLetterEnd > start {
			spans = append(spans, Span{Start: start, End: lastLetterEnd, Text: s[start:lastLetterEnd]})
		}
		start = -1
		lastLetterEnd = -1
	}

	for i, r := range s {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
			lastLetterEnd = i + len(string(r))
		case r == '-' && start >= 0:
			// Hyphen stays inside the word only if a letter follows;
			// lastLetterEnd keeps a trailing hyphen out of the span.
		default:
			flush()
		}
	}
	flush()

	return spans
}

// Words returns the text of every span of s.
func Words(s string) []string {
	spans := Spans(s)
	words := make([]string, len(spans))
	for i, sp := range spans {
		words[i] = sp.Text
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Mn, r)
}

// Fold lower-cases a word and strips its diacritics ("Étienne" -> "etienne").
func Fold(word string) string {
	// transform.Chain keeps internal state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, word)
	if err != nil {
		folded = word
	}
	return strings.ToLower(folded)
}

// Key returns the lookup key of a word or phrase: its words folded and
// joined by a single space. "rue de la  République" and "Rue De La Republique"
// share the key "rue de la republique".
func Key(s string) string {
	return JoinKeys(Spans(s))
}

// JoinKeys folds each span and joins the results with a single space.
func JoinKeys(spans []Span) string {
	if len(spans) == 0 {
		return ""
	}
	var b strings.Builder
	for i, sp := range spans {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Fold(sp.Text))
	}
	return b.String()
}

// IsMarker reports whether r is equivalent to marker. The ASCII and
// typographic apostrophes are interchangeable.
func IsMarker(r, marker rune) bool {
	if r == marker {
		return true
	}
	if marker == Apostrophe || marker == TypographicApostrophe {
		return r == Apostrophe || r == TypographicApostrophe
	}
	return false
}

// HasUpper reports whether s contains an upper-case letter.
func HasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// IsCapitalized reports whether the first rune of s is upper-case.
func IsCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
