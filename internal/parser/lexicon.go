package parser

import (
	"context"
	"fmt"

	"github.com/tomlemeuch/grandpy/internal/gazetteer"
	"github.com/tomlemeuch/grandpy/internal/textutil"
)

// BlacklistPass emits the token stream minus every token listed in a
// gazetteer category. A merged phrase survives unless the whole phrase is
// listed.
type BlacklistPass struct {
	name     string
	category gazetteer.Category
	gaz      gazetteer.Gazetteer
}

// NewStopWordsPass filters grammatical words out of the stream.
func NewStopWordsPass(g gazetteer.Gazetteer) *BlacklistPass {
	return &BlacklistPass{name: PassStopWords, category: gazetteer.StopWords, gaz: g}
}

// NewDictionaryPass filters common-language words out of the stream.
func NewDictionaryPass(g gazetteer.Gazetteer) *BlacklistPass {
	return &BlacklistPass{name: PassDictionaryWords, category: gazetteer.DictionaryWords, gaz: g}
}

func (p *BlacklistPass) Name() string { return p.name }

func (p *BlacklistPass) Extract(ctx context.Context, query string) ([]string, error) {
	set, err := p.gaz.Lookup(ctx, p.category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	out := []string{}
	for _, tok := range Tokens(query) {
		if !set.ContainsKey(textutil.Key(tok.Text)) {
			out = append(out, tok.Text)
		}
	}
	return out, nil
}

// WhitelistPass emits every gazetteer entry of a category found in the raw
// query, longest match first at each position, in query order.
type WhitelistPass struct {
	name     string
	category gazetteer.Category
	gaz      gazetteer.Gazetteer
}

// NewCountriesPass finds country names.
func NewCountriesPass(g gazetteer.Gazetteer) *WhitelistPass {
	return &WhitelistPass{name: PassCountries, category: gazetteer.Countries, gaz: g}
}

// NewCitiesPass finds city names.
func NewCitiesPass(g gazetteer.Gazetteer) *WhitelistPass {
	return &WhitelistPass{name: PassCities, category: gazetteer.Cities, gaz: g}
}

// NewWhitelistPass matches the entries of an arbitrary category under name.
func NewWhitelistPass(name string, category gazetteer.Category, g gazetteer.Gazetteer) *WhitelistPass {
	return &WhitelistPass{name: name, category: category, gaz: g}
}

func (p *WhitelistPass) Name() string { return p.name }

func (p *WhitelistPass) Extract(ctx context.Context, query string) ([]string, error) {
	set, err := p.gaz.Lookup(ctx, p.category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	matches := set.FindAll(query)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out, nil
}
