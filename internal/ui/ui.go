// Package ui displays the progress of gazetteer imports.
//
// Interactive terminals get a bubbletea view with a spinner and a progress
// bar; pipes, CI and --no-tui get one plain line per event.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/tomlemeuch/grandpy/internal/output"
)

// Stage is a step of an import.
type Stage int

const (
	// StageImporting reads a word file into the store.
	StageImporting Stage = iota
	// StageComplete indicates every file is imported.
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageImporting:
		return "Importing"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon returns the short stage label for plain text output.
func (s Stage) Icon() string {
	switch s {
	case StageImporting:
		return "IMPORT"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// ProgressEvent reports the file being imported.
type ProgressEvent struct {
	Stage    Stage
	Current  int // Files done so far
	Total    int
	Category string
	Path     string
}

// ErrorEvent reports a file that could not be imported.
type ErrorEvent struct {
	Category string
	Path     string
	Err      error
}

// CompletionStats summarises an import.
type CompletionStats struct {
	Categories int
	Words      int
	Duration   time.Duration
	Errors     int
}

// Renderer displays import progress.
type Renderer interface {
	Start(ctx context.Context) error
	UpdateProgress(event ProgressEvent)
	AddError(event ErrorEvent)
	Complete(stats CompletionStats)
	Stop() error
}

// Config configures the renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	Title      string // Shown above the TUI progress bar
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithTitle sets the TUI title.
func WithTitle(title string) ConfigOption {
	return func(c *Config) {
		c.Title = title
	}
}

// NewConfig creates a Config writing to out.
func NewConfig(out io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: out, Title: "GrandPy gazetteer"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer returns a TUI renderer for interactive terminals and a plain
// renderer otherwise.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !output.IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}
	return NewTUIRenderer(cfg)
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
