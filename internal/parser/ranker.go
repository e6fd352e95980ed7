package parser

import (
	"sort"
)

// PassOutput is the candidate list one pass produced for a query.
type PassOutput struct {
	Name   string
	Weight float64
	Tokens []string
	Err    error
}

// Candidate is a token with its salience score.
type Candidate struct {
	Token string
	Score float64
}

// Aggregate merges pass outputs into a score table. For each token at index
// i of a pass weighted w, factor = (i + 1) * w; the first occurrence of a
// token sets its score to factor and later occurrences multiply it.
//
// Candidates are returned in first-discovered order: output order, then
// position within the output. Failed outputs contribute nothing.
func Aggregate(outputs []PassOutput) []Candidate {
	index := make(map[string]int)
	candidates := []Candidate{}

	for _, out := range outputs {
		if out.Err != nil {
			continue
		}
		for i, tok := range out.Tokens {
			factor := float64(i+1) * out.Weight
			if k, ok := index[tok]; ok {
				candidates[k].Score *= factor
				continue
			}
			index[tok] = len(candidates)
			candidates = append(candidates, Candidate{Token: tok, Score: factor})
		}
	}

	return candidates
}

// Mean returns the arithmetic mean score, 0 for no candidates.
func Mean(candidates []Candidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.Score
	}
	return sum / float64(len(candidates))
}

// Threshold keeps the candidates scoring strictly above the mean, best
// first. Equal scores keep first-discovered order. Return empty slice, not
// nil.
func Threshold(candidates []Candidate) []Candidate {
	kept := []Candidate{}
	if len(candidates) == 0 {
		return kept
	}

	mean := Mean(candidates)
	for _, c := range candidates {
		if c.Score > mean {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	return kept
}

// Texts returns the tokens of candidates, in order.
func Texts(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Token
	}
	return out
}
