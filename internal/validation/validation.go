// Package validation checks a ranker against reference questions.
//
// Questions are data-driven, loaded from YAML: the built-in set ships with
// the binary and "grandpy validate --file" runs any other set, so the
// reference questions can grow without rebuilding.
package validation

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
)

//go:embed queries.yaml
var defaultQueries []byte

// Tiers of a QuerySpec.
const (
	TierNegative = 0
	Tier1        = 1
	Tier2        = 2
)

// QuerySpec is a reference question.
type QuerySpec struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Query    string `yaml:"query" json:"query"`
	Expected string `yaml:"expected" json:"expected,omitempty"`
	Notes    string `yaml:"notes" json:"notes,omitempty"`
	Tier     int    `yaml:"-" json:"tier"` // Set from the section it is listed in
}

// QueryConfig holds the questions of every tier.
type QueryConfig struct {
	Tier1    []QuerySpec `yaml:"tier1"`
	Tier2    []QuerySpec `yaml:"tier2"`
	Negative []QuerySpec `yaml:"negative"`
}

// Len returns the number of questions.
func (c *QueryConfig) Len() int {
	return len(c.Tier1) + len(c.Tier2) + len(c.Negative)
}

// LoadQueries parses a question set.
func LoadQueries(r io.Reader) (*QueryConfig, error) {
	var cfg QueryConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, gperrors.New(gperrors.ErrCodeInvalidInput, "failed to parse queries YAML", err)
	}

	for i := range cfg.Tier1 {
		cfg.Tier1[i].Tier = Tier1
	}
	for i := range cfg.Tier2 {
		cfg.Tier2[i].Tier = Tier2
	}
	for i := range cfg.Negative {
		cfg.Negative[i].Tier = TierNegative
	}

	for _, spec := range append(cfg.Tier1, cfg.Tier2...) {
		if spec.Expected == "" {
			return nil, gperrors.New(gperrors.ErrCodeInvalidInput,
				fmt.Sprintf("query %s has no expected entity", spec.ID), nil)
		}
	}
	return &cfg, nil
}

// LoadQueriesFile parses the question set at path.
func LoadQueriesFile(path string) (*QueryConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gperrors.New(gperrors.ErrCodeFileNotFound,
			fmt.Sprintf("failed to open queries file %s", path), err)
	}
	defer func() { _ = f.Close() }()
	return LoadQueries(f)
}

var defaults = sync.OnceValues(func() (*QueryConfig, error) {
	return LoadQueries(bytes.NewReader(defaultQueries))
})

// DefaultQueries returns the built-in question set. The result is shared
// and must not be modified.
func DefaultQueries() (*QueryConfig, error) {
	return defaults()
}

// Ranker ranks the candidate entities of a query, best first.
type Ranker interface {
	Rank(ctx context.Context, query string) []string
}

// TestResult is the outcome of one question.
type TestResult struct {
	Spec      QuerySpec     `json:"spec"`
	Passed    bool          `json:"passed"`
	Duration  time.Duration `json:"duration_ns"`
	Ranked    []string      `json:"ranked"`
	MatchedAt int           `json:"matched_at"` // Position of Expected, -1 if absent
}

// ValidationResult is the outcome of a question set.
type ValidationResult struct {
	Timestamp  time.Time    `json:"timestamp"`
	Tier1      []TestResult `json:"tier1"`
	Tier2      []TestResult `json:"tier2"`
	Negative   []TestResult `json:"negative"`
	Tier1Pass  int          `json:"tier1_pass"`
	Tier2Pass  int          `json:"tier2_pass"`
	NegPass    int          `json:"negative_pass"`
	TotalTests int          `json:"total"`
}

// Passed reports whether every question passed.
func (r *ValidationResult) Passed() bool {
	return r.Tier1Pass == len(r.Tier1) && r.Tier2Pass == len(r.Tier2) && r.NegPass == len(r.Negative)
}

// Failures returns the failed questions in tier order.
func (r *ValidationResult) Failures() []TestResult {
	var failed []TestResult
	for _, set := range [][]TestResult{r.Tier1, r.Tier2, r.Negative} {
		for _, res := range set {
			if !res.Passed {
				failed = append(failed, res)
			}
		}
	}
	return failed
}

// Validator runs questions against a ranker.
type Validator struct {
	ranker Ranker
}

// NewValidator creates a validator over ranker.
func NewValidator(ranker Ranker) *Validator {
	return &Validator{ranker: ranker}
}

// RunQuery checks one question.
func (v *Validator) RunQuery(ctx context.Context, spec QuerySpec) TestResult {
	start := time.Now()
	ranked := v.ranker.Rank(ctx, spec.Query)

	result := TestResult{
		Spec:      spec,
		Duration:  time.Since(start),
		Ranked:    ranked,
		MatchedAt: -1,
	}
	for i, token := range ranked {
		if token == spec.Expected {
			result.MatchedAt = i
			break
		}
	}

	switch spec.Tier {
	case Tier1:
		result.Passed = result.MatchedAt == 0
	case Tier2:
		result.Passed = result.MatchedAt >= 0
	default:
		result.Passed = len(ranked) == 0
	}
	return result
}

// Run checks every question of cfg. It stops early if ctx is cancelled.
func (v *Validator) Run(ctx context.Context, cfg *QueryConfig) (*ValidationResult, error) {
	res := &ValidationResult{Timestamp: time.Now()}

	run := func(specs []QuerySpec, pass *int) ([]TestResult, error) {
		results := make([]TestResult, 0, len(specs))
		for _, spec := range specs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r := v.RunQuery(ctx, spec)
			if r.Passed {
				*pass++
			}
			results = append(results, r)
		}
		return results, nil
	}

	var err error
	if res.Tier1, err = run(cfg.Tier1, &res.Tier1Pass); err != nil {
		return nil, err
	}
	if res.Tier2, err = run(cfg.Tier2, &res.Tier2Pass); err != nil {
		return nil, err
	}
	if res.Negative, err = run(cfg.Negative, &res.NegPass); err != nil {
		return nil, err
	}
	res.TotalTests = cfg.Len()
	return res, nil
}
