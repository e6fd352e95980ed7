package cmd

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomlemeuch/grandpy/internal/gazetteer"
	"github.com/tomlemeuch/grandpy/internal/parser"
	"github.com/tomlemeuch/grandpy/internal/telemetry"
)

// engine is a controller wired from the configuration, with the registry
// its metrics are gathered from.
type engine struct {
	controller *parser.Controller
	registry   *prometheus.Registry
}

// newEngine builds the gazetteer, the pass registry and the controller.
func (a *app) newEngine(ctx context.Context) (*engine, error) {
	g, err := a.gazetteer(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := parser.DefaultRegistry(g, a.cfg.Parser.Weights, a.cfg.MarkerRune())
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics()
	promReg := prometheus.NewRegistry()
	if err := metrics.Register(promReg); err != nil {
		return nil, err
	}

	ctrl := parser.NewController(reg,
		parser.WithParallel(a.cfg.ParallelEnabled()),
		parser.WithCacheSize(a.cfg.CacheEntries()),
		parser.WithMetrics(metrics),
	)

	return &engine{controller: ctrl, registry: promReg}, nil
}

// gazetteer returns the configured word lists, preloaded into memory.
// A store takes precedence over word files; without either the built-in
// lists are used.
func (a *app) gazetteer(ctx context.Context) (gazetteer.Gazetteer, error) {
	if path := a.cfg.Gazetteer.DBPath; path != "" {
		store, err := gazetteer.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()

		slog.Debug("gazetteer_source", slog.String("store", path))
		return gazetteer.Preload(ctx, store), nil
	}

	files, err := a.cfg.FileCategories()
	if err != nil {
		return nil, err
	}
	words, err := gazetteer.LoadFiles(files, gazetteer.DefaultWords())
	if err != nil {
		return nil, err
	}

	slog.Debug("gazetteer_source", slog.Int("files", len(files)))
	return gazetteer.NewMemory(words), nil
}

// writeMetrics exports the run's metrics when a textfile is configured.
func (a *app) writeMetrics(e *engine) {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := telemetry.WriteTextfile(path, e.registry); err != nil {
		slog.Warn("metrics_textfile_failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
