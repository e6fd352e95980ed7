// Package gazetteer provides the read-only named word sets consulted by
// extraction passes: stop words, dictionary words, countries and cities.
//
// Sets are loaded once per process (from the embedded defaults, from word
// files or from a SQLite store) and are never mutated during extraction, so
// they are safe for concurrent reads without locking.
package gazetteer

import (
	"fmt"
	"strings"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
)

// Category names one gazetteer word set.
type Category string

const (
	// StopWords are grammatical words that never name an entity.
	StopWords Category = "stop_words"
	// DictionaryWords are common-language words.
	DictionaryWords Category = "dictionary_words"
	// Countries are country names.
	Countries Category = "countries"
	// Cities are city names.
	Cities Category = "cities"
)

// Categories returns every category in a stable order.
func Categories() []Category {
	return []Category{StopWords, DictionaryWords, Countries, Cities}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case StopWords, DictionaryWords, Countries, Cities:
		return true
	default:
		return false
	}
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a name such as "cities" or "stop-words" to a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	if !c.Valid() {
		return "", gperrors.New(gperrors.ErrCodeUnknownCategory,
			fmt.Sprintf("unknown gazetteer category %q", name), nil).
			WithSuggestion("Use one of: stop_words, dictionary_words, countries, cities")
	}
	return c, nil
}
