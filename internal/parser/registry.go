package parser

import (
	"fmt"
	"math"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/gazetteer"
)

// WeightedPass pairs a pass with the trust placed in its output.
type WeightedPass struct {
	Pass   Pass
	Weight float64
}

// Registry is an immutable, ordered list of weighted passes. Registry order
// is the order in which pass outputs are merged and therefore decides ties.
type Registry struct {
	passes []WeightedPass
}

// ValidWeight reports whether w is a usable pass weight: finite and
// greater than zero.
func ValidWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0)
}

// NewRegistry validates and freezes passes. Every pass must be non-nil with a
// weight greater than zero.
func NewRegistry(passes ...WeightedPass) (Registry, error) {
	frozen := make([]WeightedPass, len(passes))
	for i, wp := range passes {
		if wp.Pass == nil {
			return Registry{}, gperrors.New(gperrors.ErrCodeInvalidInput,
				fmt.Sprintf("registry entry %d has no pass", i), nil)
		}
		if !ValidWeight(wp.Weight) {
			return Registry{}, gperrors.New(gperrors.ErrCodeInvalidWeight,
				fmt.Sprintf("pass %q has weight %g, must be a finite number greater than 0", wp.Pass.Name(), wp.Weight), nil).
				WithDetail("pass", wp.Pass.Name())
		}
		frozen[i] = wp
	}
	return Registry{passes: frozen}, nil
}

// Passes returns a copy of the weighted passes in registry order.
func (r Registry) Passes() []WeightedPass {
	out := make([]WeightedPass, len(r.passes))
	copy(out, r.passes)
	return out
}

// Len returns the number of passes.
func (r Registry) Len() int {
	return len(r.passes)
}

// Names returns the pass names in registry order.
func (r Registry) Names() []string {
	names := make([]string, len(r.passes))
	for i, wp := range r.passes {
		names[i] = wp.Pass.Name()
	}
	return names
}

// PassNames returns the names of the default passes in registry order.
func PassNames() []string {
	return []string{
		PassBeforeMarker,
		PassAfterMarker,
		PassWords,
		PassSingleLetters,
		PassStopWords,
		PassDictionaryWords,
		PassProperNouns,
		PassCountries,
		PassCities,
	}
}

// DefaultWeights returns the reference weight of every default pass.
// Whitelist gazetteer passes are trusted most.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		PassBeforeMarker:    0.5,
		PassAfterMarker:     1.0,
		PassWords:           1.0,
		PassSingleLetters:   1.1,
		PassStopWords:       1.1,
		PassDictionaryWords: 1.2,
		PassProperNouns:     1.0,
		PassCountries:       1.3,
		PassCities:          1.4,
	}
}

// DefaultRegistry builds the standard nine-pass registry over g. Entries in
// weights override the reference weights by pass name; marker is the rune
// the marker passes split on.
func DefaultRegistry(g gazetteer.Gazetteer, weights map[string]float64, marker rune) (Registry, error) {
	w := DefaultWeights()
	for name, v := range weights {
		if _, ok := w[name]; !ok {
			return Registry{}, gperrors.New(gperrors.ErrCodeUnknownPass,
				fmt.Sprintf("unknown pass %q", name), nil).
				WithSuggestion(fmt.Sprintf("Known passes: %v", PassNames()))
		}
		w[name] = v
	}

	passes := []Pass{
		BeforeMarkerPass{Marker: marker},
		AfterMarkerPass{Marker: marker},
		WordsPass{},
		SingleLettersPass{},
		NewStopWordsPass(g),
		NewDictionaryPass(g),
		ProperNounPass{},
		NewCountriesPass(g),
		NewCitiesPass(g),
	}

	weighted := make([]WeightedPass, len(passes))
	for i, p := range passes {
		weighted[i] = WeightedPass{Pass: p, Weight: w[p.Name()]}
	}
	return NewRegistry(weighted...)
}
