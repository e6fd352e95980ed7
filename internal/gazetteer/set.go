package gazetteer

import (
	"sort"
	"strings"

	"github.com/tomlemeuch/grandpy/internal/textutil"
)

// Set is an immutable set of words and phrases, matched case- and
// accent-insensitively. The zero value is an empty set.
type Set struct {
	keys     map[string]struct{}
	maxWords int
}

// NewSet builds a set from raw entries. Entries without any word are ignored.
func NewSet(entries ...string) Set {
	s := Set{keys: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		spans := textutil.Spans(e)
		if len(spans) == 0 {
			continue
		}
		s.keys[textutil.JoinKeys(spans)] = struct{}{}
		if len(spans) > s.maxWords {
			s.maxWords = len(spans)
		}
	}
	return s
}

// Len returns the number of distinct entries.
func (s Set) Len() int {
	return len(s.keys)
}

// MaxWords returns the word count of the longest entry.
func (s Set) MaxWords() int {
	return s.maxWords
}

// Contains reports whether text, folded into a key, is an entry.
func (s Set) Contains(text string) bool {
	return s.ContainsKey(textutil.Key(text))
}

// ContainsKey reports whether an already folded key is an entry.
func (s Set) ContainsKey(key string) bool {
	if key == "" {
		return false
	}
	_, ok := s.keys[key]
	return ok
}

// Match is one gazetteer entry found in a text.
type Match struct {
	Start int    // Byte offset in the scanned text
	End   int    // Byte offset after the match
	Text  string // Raw text of the match
	Words int    // Number of words matched
}

// FindAll scans text for entries. Where entries overlap the one covering
// the most words wins, the earlier one on a tie, and words it consumes cannot
// be part of another match. So "rue" is never reported inside a matched
// "rue de la République". Matches are returned in text order.
func (s Set) FindAll(text string) []Match {
	matches := []Match{}
	if s.Len() == 0 {
		return matches
	}

	spans := textutil.Spans(text)
	keys := make([]string, len(spans))
	for i, sp := range spans {
		keys[i] = textutil.Fold(sp.Text)
	}

	type candidate struct{ first, words int }
	var cands []candidate
	for i := range keys {
		for _, n := range s.entriesAt(keys, i) {
			cands = append(cands, candidate{first: i, words: n})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		return cands[a].words > cands[b].words
	})

	taken := make([]bool, len(spans))
	var kept []candidate
	for _, c := range cands {
		free := true
		for j := c.first; j < c.first+c.words; j++ {
			if taken[j] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for j := c.first; j < c.first+c.words; j++ {
			taken[j] = true
		}
		kept = append(kept, c)
	}
	sort.Slice(kept, func(a, b int) bool { return kept[a].first < kept[b].first })

	for _, c := range kept {
		start, end := spans[c.first].Start, spans[c.first+c.words-1].End
		matches = append(matches, Match{Start: start, End: end, Text: text[start:end], Words: c.words})
	}
	return matches
}

// entriesAt returns the word counts of every entry starting at keys[i],
// longest first.
func (s Set) entriesAt(keys []string, i int) []int {
	limit := s.maxWords
	if rest := len(keys) - i; rest < limit {
		limit = rest
	}
	var found []int
	for n := limit; n > 0; n-- {
		if _, ok := s.keys[strings.Join(keys[i:i+n], " ")]; ok {
			found = append(found, n)
		}
	}
	return found
}
