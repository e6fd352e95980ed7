package parser

import "context"

// Pass names of the default registry.
const (
	PassBeforeMarker    = "before_marker"
	PassAfterMarker     = "after_marker"
	PassWords           = "words"
	PassSingleLetters   = "single_letters"
	PassStopWords       = "stop_words"
	PassDictionaryWords = "dictionary_words"
	PassProperNouns     = "proper_nouns"
	PassCountries       = "countries"
	PassCities          = "cities"
)

// Pass extracts an ordered list of candidate tokens from a query.
//
// Extract must be deterministic for a given query and gazetteer snapshot and
// must not keep state between calls; the Controller runs passes concurrently.
// An empty result is valid. A returned error makes the Controller treat the
// pass as empty.
type Pass interface {
	Name() string
	Extract(ctx context.Context, query string) ([]string, error)
}
