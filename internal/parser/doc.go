// Package parser extracts the most likely named entity from a free-text
// query.
//
// Several independent passes run over the same raw query and each returns an
// ordered list of candidate tokens. The Controller merges those lists with a
// multiplicative score, factor = (index + 1) * weight, and keeps the tokens
// scoring strictly above the mean, best first.
//
// Basic usage:
//
//	reg, err := parser.DefaultRegistry(gazetteer.Defaults(), nil, textutil.Apostrophe)
//	if err != nil {
//	    return err
//	}
//	c := parser.NewController(reg)
//	ranked := c.Rank(ctx, "Je cherche la place Carnot") // ["place Carnot"]
package parser
