package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/gazetteer"
	"github.com/tomlemeuch/grandpy/internal/textutil"
)

func TestNewRegistry_Validates(t *testing.T) {
	tests := []struct {
		name     string
		entry    WeightedPass
		wantCode string
	}{
		{name: "nil pass", entry: WeightedPass{Weight: 1}, wantCode: gperrors.ErrCodeInvalidInput},
		{name: "zero weight", entry: WeightedPass{Pass: WordsPass{}, Weight: 0}, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "negative weight", entry: WeightedPass{Pass: WordsPass{}, Weight: -1}, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "NaN weight", entry: WeightedPass{Pass: WordsPass{}, Weight: math.NaN()}, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "positive infinity", entry: WeightedPass{Pass: WordsPass{}, Weight: math.Inf(1)}, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "negative infinity", entry: WeightedPass{Pass: WordsPass{}, Weight: math.Inf(-1)}, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "valid", entry: WeightedPass{Pass: WordsPass{}, Weight: 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.entry)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, gperrors.GetCode(err))
		})
	}
}

func TestRegistry_IsImmutable(t *testing.T) {
	entries := []WeightedPass{{Pass: WordsPass{}, Weight: 1}}
	reg, err := NewRegistry(entries...)
	require.NoError(t, err)

	entries[0].Weight = 99
	got := reg.Passes()
	got[0].Weight = 42

	assert.Equal(t, 1.0, reg.Passes()[0].Weight)
}

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry(gazetteer.Defaults(), nil, textutil.Apostrophe)
	require.NoError(t, err)

	assert.Equal(t, PassNames(), reg.Names())
	assert.Equal(t, 9, reg.Len())

	defaults := DefaultWeights()
	for _, wp := range reg.Passes() {
		assert.Equal(t, defaults[wp.Pass.Name()], wp.Weight, wp.Pass.Name())
	}
}

func TestDefaultRegistry_WeightOverrides(t *testing.T) {
	reg, err := DefaultRegistry(gazetteer.Defaults(), map[string]float64{PassCities: 2.5}, textutil.Apostrophe)
	require.NoError(t, err)

	passes := reg.Passes()
	assert.Equal(t, 2.5, passes[len(passes)-1].Weight)
	assert.Equal(t, 1.3, passes[len(passes)-2].Weight)
}

func TestDefaultRegistry_RejectsBadWeights(t *testing.T) {
	_, err := DefaultRegistry(gazetteer.Defaults(), map[string]float64{"streets": 1}, textutil.Apostrophe)
	assert.Equal(t, gperrors.ErrCodeUnknownPass, gperrors.GetCode(err))

	_, err = DefaultRegistry(gazetteer.Defaults(), map[string]float64{PassWords: 0}, textutil.Apostrophe)
	assert.Equal(t, gperrors.ErrCodeInvalidWeight, gperrors.GetCode(err))
}

func TestDefaultRegistry_UsesMarker(t *testing.T) {
	reg, err := DefaultRegistry(gazetteer.Defaults(), nil, '#')
	require.NoError(t, err)

	passes := reg.Passes()
	assert.Equal(t, BeforeMarkerPass{Marker: '#'}, passes[0].Pass)
	assert.Equal(t, AfterMarkerPass{Marker: '#'}, passes[1].Pass)
}
