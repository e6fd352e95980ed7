package parser

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomlemeuch/grandpy/internal/textutil"
)

// streetKeywords open a street phrase. Keys are folded.
var streetKeywords = map[string]struct{}{
	"rue": {}, "place": {}, "avenue": {}, "boulevard": {}, "quai": {},
	"chemin": {}, "allee": {}, "impasse": {}, "cours": {}, "route": {},
	"square": {}, "passage": {}, "esplanade": {}, "parvis": {}, "pont": {},
	"porte": {},
}

// streetParticles may sit between a street keyword and its name.
var streetParticles = map[string]struct{}{
	"de": {}, "du": {}, "des": {}, "la": {}, "le": {}, "les": {}, "d": {}, "l": {},
}

// Tokens returns the phrase-aware token stream of query: its words, with
// street phrases such as "rue de la République" or "place Carnot" merged
// into one token. A street phrase is a street keyword, optional particles,
// then one or more capitalised words, separated only by spaces or
// apostrophes. Merged tokens keep the raw text of the query.
func Tokens(query string) []textutil.Span {
	words := textutil.Spans(query)
	tokens := make([]textutil.Span, 0, len(words))

	for i := 0; i < len(words); {
		if end := streetPhraseEnd(query, words, i); end > i {
			start, stop := words[i].Start, words[end].End
			tokens = append(tokens, textutil.Span{Start: start, End: stop, Text: query[start:stop]})
			i = end + 1
			continue
		}
		tokens = append(tokens, words[i])
		i++
	}

	return tokens
}

// streetPhraseEnd returns the index of the last word of the street phrase
// starting at words[i], or i when none starts there.
func streetPhraseEnd(query string, words []textutil.Span, i int) int {
	if _, ok := streetKeywords[textutil.Fold(words[i].Text)]; !ok {
		return i
	}

	j := i + 1
	for j < len(words) && joined(query, words[j-1], words[j]) {
		if _, ok := streetParticles[textutil.Fold(words[j].Text)]; !ok {
			break
		}
		j++
	}

	end := i
	for j < len(words) && joined(query, words[j-1], words[j]) && textutil.IsCapitalized(words[j].Text) {
		end = j
		j++
	}

	return end
}

// joined reports whether only spaces and apostrophes separate a and b.
func joined(query string, a, b textutil.Span) bool {
	for _, r := range query[a.End:b.Start] {
		if !unicode.IsSpace(r) && !textutil.IsMarker(r, textutil.Apostrophe) {
			return false
		}
	}
	return true
}

func tokenTexts(spans []textutil.Span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.Text
	}
	return out
}

// WordsPass emits every token of the stream, punctuation stripped.
type WordsPass struct{}

func (WordsPass) Name() string { return PassWords }

func (WordsPass) Extract(_ context.Context, query string) ([]string, error) {
	return tokenTexts(Tokens(query)), nil
}

// SingleLettersPass emits the stream without one-letter tokens such as the
// elided "l" and "d".
type SingleLettersPass struct{}

func (SingleLettersPass) Name() string { return PassSingleLetters }

func (SingleLettersPass) Extract(_ context.Context, query string) ([]string, error) {
	out := []string{}
	for _, tok := range Tokens(query) {
		if utf8.RuneCountInString(tok.Text) > 1 {
			out = append(out, tok.Text)
		}
	}
	return out, nil
}

// ProperNounPass emits stream tokens holding an upper-case letter, ordered
// by ascending length so that the longest, most specific name gets the
// highest position factor. Equal lengths keep query order.
type ProperNounPass struct{}

func (ProperNounPass) Name() string { return PassProperNouns }

func (ProperNounPass) Extract(_ context.Context, query string) ([]string, error) {
	out := []string{}
	for _, tok := range Tokens(query) {
		if textutil.HasUpper(tok.Text) {
			out = append(out, tok.Text)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) < utf8.RuneCountInString(out[j])
	})
	return out, nil
}

// BeforeMarkerPass emits the word right before each occurrence of Marker,
// e.g. the elided article "l" in "l'adresse".
type BeforeMarkerPass struct {
	Marker rune
}

func (BeforeMarkerPass) Name() string { return PassBeforeMarker }

func (p BeforeMarkerPass) Extract(_ context.Context, query string) ([]string, error) {
	words := textutil.Spans(query)
	out := []string{}
	for _, at := range markerOffsets(query, p.Marker) {
		// Last word ending at or before the marker.
		k := sort.Search(len(words), func(i int) bool { return words[i].End > at }) - 1
		if k >= 0 && blank(query[words[k].End:at]) {
			out = append(out, words[k].Text)
		}
	}
	return out, nil
}

// AfterMarkerPass emits the word right after each occurrence of Marker,
// e.g. "Openclassrooms" in "d'Openclassrooms".
type AfterMarkerPass struct {
	Marker rune
}

func (AfterMarkerPass) Name() string { return PassAfterMarker }

func (p AfterMarkerPass) Extract(_ context.Context, query string) ([]string, error) {
	words := textutil.Spans(query)
	out := []string{}
	for _, at := range markerOffsets(query, p.Marker) {
		after := at + utf8.RuneLen(markerAt(query, at))
		k := sort.Search(len(words), func(i int) bool { return words[i].Start >= after })
		if k < len(words) && blank(query[after:words[k].Start]) {
			out = append(out, words[k].Text)
		}
	}
	return out, nil
}

// markerOffsets returns the byte offset of every marker rune in query.
func markerOffsets(query string, marker rune) []int {
	var offsets []int
	for i, r := range query {
		if textutil.IsMarker(r, marker) {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

func markerAt(query string, at int) rune {
	r, _ := utf8.DecodeRuneInString(query[at:])
	return r
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
