package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/telemetry"
)

// DefaultCacheSize is the number of ranked queries kept by NewController.
const DefaultCacheSize = 1024

// Explanation details one ranking run.
type Explanation struct {
	Query      string
	Outputs    []PassOutput // One per pass, in registry order
	Candidates []Candidate  // Score table in first-discovered order
	Mean       float64
	Ranked     []Candidate // Candidates above Mean, best first
}

// Controller runs a registry of passes over queries and ranks the merged
// candidates. It is safe for concurrent use.
type Controller struct {
	registry Registry
	parallel bool
	cache    *lru.Cache[string, []string]
	metrics  *telemetry.Metrics
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithParallel selects concurrent (default) or sequential pass execution.
// Both produce the same ranking.
func WithParallel(parallel bool) ControllerOption {
	return func(c *Controller) {
		c.parallel = parallel
	}
}

// WithCacheSize sets how many ranked queries are remembered.
// Zero or a negative size disables the cache.
func WithCacheSize(size int) ControllerOption {
	return func(c *Controller) {
		if size <= 0 {
			c.cache = nil
			return
		}
		c.cache, _ = lru.New[string, []string](size)
	}
}

// WithMetrics records ranking metrics.
func WithMetrics(m *telemetry.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// NewController creates a controller over reg.
func NewController(reg Registry, opts ...ControllerOption) *Controller {
	cache, _ := lru.New[string, []string](DefaultCacheSize)
	c := &Controller{
		registry: reg,
		parallel: true,
		cache:    cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the controller's registry.
func (c *Controller) Registry() Registry {
	return c.registry
}

// Rank returns the candidates of query scoring above the mean, best first.
// It never fails: empty input, or failing passes, degrade to fewer or no
// candidates. Return empty slice, not nil.
func (c *Controller) Rank(ctx context.Context, query string) []string {
	if c.cache != nil {
		if ranked, ok := c.cache.Get(query); ok {
			c.metrics.IncCacheHits()
			return append([]string{}, ranked...)
		}
	}

	exp, failed := c.explain(ctx, query, c.registry)
	ranked := Texts(exp.Ranked)

	// A failed pass may be transient; keep such results out of the cache.
	if c.cache != nil && !failed {
		c.cache.Add(query, append([]string{}, ranked...))
	}
	return ranked
}

// RankWith ranks query with reg instead of the controller's registry.
// Results are not cached.
func (c *Controller) RankWith(ctx context.Context, query string, reg Registry) []string {
	exp, _ := c.explain(ctx, query, reg)
	return Texts(exp.Ranked)
}

// Best returns the most likely entity of query, if any.
func (c *Controller) Best(ctx context.Context, query string) (string, bool) {
	ranked := c.Rank(ctx, query)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0], true
}

// Explain ranks query and returns every intermediate result.
func (c *Controller) Explain(ctx context.Context, query string) Explanation {
	exp, _ := c.explain(ctx, query, c.registry)
	return exp
}

func (c *Controller) explain(ctx context.Context, query string, reg Registry) (Explanation, bool) {
	start := time.Now()
	slog.Debug("parse_started", slog.String("query", query))

	outputs := c.runPasses(ctx, query, reg)

	failed := false
	for _, out := range outputs {
		if out.Err == nil {
			continue
		}
		failed = true
		c.metrics.IncPassFailures(out.Name)
		attrs := append([]any{slog.String("pass", out.Name)}, gperrors.LogAttrs(out.Err)...)
		slog.Warn("pass_failed", attrs...)
	}

	candidates := Aggregate(outputs)
	ranked := Threshold(candidates)
	exp := Explanation{
		Query:      query,
		Outputs:    outputs,
		Candidates: candidates,
		Mean:       Mean(candidates),
		Ranked:     ranked,
	}

	elapsed := time.Since(start)
	c.metrics.ObserveRank(elapsed, len(candidates), len(ranked))

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("parse_finished",
			slog.String("query", query),
			slog.Any("grades", grades(candidates)),
			slog.Float64("mean", exp.Mean),
			slog.Any("ranked", Texts(ranked)),
			slog.Duration("elapsed", elapsed))
	}

	return exp, failed
}

// runPasses executes every pass of reg and returns their outputs in
// registry order, whatever the execution order was.
func (c *Controller) runPasses(ctx context.Context, query string, reg Registry) []PassOutput {
	outputs := make([]PassOutput, len(reg.passes))

	if !c.parallel {
		for i, wp := range reg.passes {
			outputs[i] = runPass(ctx, wp, query)
		}
		return outputs
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, wp := range reg.passes {
		g.Go(func() error {
			outputs[i] = runPass(gctx, wp, query)
			return nil // Failures stay in the output; never cancel siblings
		})
	}
	_ = g.Wait()

	return outputs
}

// runPass runs one pass, turning a panic into a pass error.
func runPass(ctx context.Context, wp WeightedPass, query string) (out PassOutput) {
	out = PassOutput{Name: wp.Pass.Name(), Weight: wp.Weight}

	defer func() {
		if r := recover(); r != nil {
			out.Tokens = nil
			out.Err = gperrors.New(gperrors.ErrCodePassFailed,
				fmt.Sprintf("pass %s panicked: %v", out.Name, r), nil)
		}
	}()

	tokens, err := wp.Pass.Extract(ctx, query)
	if err != nil {
		if gperrors.GetCode(err) == "" {
			err = gperrors.New(gperrors.ErrCodePassFailed, fmt.Sprintf("pass %s failed", out.Name), err)
		}
		out.Err = err
		return out
	}
	out.Tokens = tokens
	return out
}

type grade struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
}

func grades(candidates []Candidate) []grade {
	out := make([]grade, len(candidates))
	for i, c := range candidates {
		out[i] = grade{Token: c.Token, Score: c.Score}
	}
	return out
}
