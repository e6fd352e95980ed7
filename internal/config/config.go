// Package config loads GrandPy configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the user
// config ($XDG_CONFIG_HOME/grandpy/config.yaml), the project config
// (.grandpy.yaml in the working directory), then GRANDPY_* environment
// variables. The result is validated before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/gazetteer"
	"github.com/tomlemeuch/grandpy/internal/logging"
	"github.com/tomlemeuch/grandpy/internal/parser"
)

// ProjectConfigName is the project configuration file name.
const ProjectConfigName = ".grandpy.yaml"

// Environment variables overriding configuration values.
const (
	EnvDBPath          = "GRANDPY_DB_PATH"
	EnvLogLevel        = "GRANDPY_LOG_LEVEL"
	EnvLogFile         = "GRANDPY_LOG_FILE"
	EnvMarker          = "GRANDPY_MARKER"
	EnvParallel        = "GRANDPY_PARALLEL"
	EnvCacheSize       = "GRANDPY_CACHE_SIZE"
	EnvMetricsTextfile = "GRANDPY_METRICS_TEXTFILE"
	// EnvWeightPrefix is followed by an upper-cased pass name,
	// e.g. GRANDPY_WEIGHT_CITIES.
	EnvWeightPrefix = "GRANDPY_WEIGHT_"
)

// Config represents the complete GrandPy configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Gazetteer GazetteerConfig `yaml:"gazetteer" json:"gazetteer"`
	Parser    ParserConfig    `yaml:"parser" json:"parser"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// GazetteerConfig selects where word lists come from.
type GazetteerConfig struct {
	// DBPath is a SQLite store filled by "grandpy load".
	// Empty uses the built-in word lists.
	DBPath string `yaml:"db_path" json:"db_path"`

	// Files maps a category to a word file read at startup, replacing the
	// built-in list of that category. Ignored when DBPath is set.
	Files map[string]string `yaml:"files,omitempty" json:"files,omitempty"`
}

// ParserConfig tunes the extraction passes and the ranking controller.
type ParserConfig struct {
	// Marker is the single character the marker passes split on.
	Marker string `yaml:"marker" json:"marker"`

	// Parallel runs passes concurrently. Nil means true.
	Parallel *bool `yaml:"parallel,omitempty" json:"parallel,omitempty"`

	// CacheSize is the number of ranked queries remembered. Nil means
	// parser.DefaultCacheSize; zero or a negative value disables the cache.
	CacheSize *int `yaml:"cache_size,omitempty" json:"cache_size,omitempty"`

	// Weights override the default weight of a pass by name.
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile receives Prometheus metrics after each CLI run. Empty disables.
	Textfile string `yaml:"textfile" json:"textfile"`
}

// NewConfig returns a configuration with all defaults applied.
func NewConfig() *Config {
	parallel := true
	cacheSize := parser.DefaultCacheSize
	return &Config{
		Version: 1,
		Gazetteer: GazetteerConfig{
			DBPath: "",
		},
		Parser: ParserConfig{
			Marker:    "'",
			Parallel:  &parallel,
			CacheSize: &cacheSize,
			Weights:   parser.DefaultWeights(),
		},
		Logging: LoggingConfig{
			Level:     "warn",
			File:      "",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// DefaultDBPath returns the store path used by "grandpy load" when none is
// configured (~/.grandpy/gazetteer.db).
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".grandpy", "gazetteer.db")
	}
	return filepath.Join(home, ".grandpy", "gazetteer.db")
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/grandpy/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/grandpy/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "grandpy", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "grandpy", "config.yaml")
	}
	return filepath.Join(home, ".config", "grandpy", "config.yaml")
}

// Load builds the configuration for the project in dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	// Step 1: user config
	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	// Step 2: project config, .yaml before .yml
	for _, name := range []string{ProjectConfigName, ".grandpy.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
			break
		}
	}

	// Step 3: environment
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	// Step 4: validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadYAML parses path and merges its values over c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return gperrors.New(gperrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return gperrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Maps merge per key.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Gazetteer.DBPath != "" {
		c.Gazetteer.DBPath = other.Gazetteer.DBPath
	}
	for cat, path := range other.Gazetteer.Files {
		if c.Gazetteer.Files == nil {
			c.Gazetteer.Files = make(map[string]string)
		}
		c.Gazetteer.Files[cat] = path
	}

	if other.Parser.Marker != "" {
		c.Parser.Marker = other.Parser.Marker
	}
	if other.Parser.Parallel != nil {
		v := *other.Parser.Parallel
		c.Parser.Parallel = &v
	}
	if other.Parser.CacheSize != nil {
		v := *other.Parser.CacheSize
		c.Parser.CacheSize = &v
	}
	for name, w := range other.Parser.Weights {
		if c.Parser.Weights == nil {
			c.Parser.Weights = make(map[string]float64)
		}
		c.Parser.Weights[name] = w
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}

// applyEnvOverrides applies GRANDPY_* variables. Malformed numbers are
// configuration errors rather than silently ignored.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Gazetteer.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvMarker); v != "" {
		c.Parser.Marker = v
	}
	if v := os.Getenv(EnvMetricsTextfile); v != "" {
		c.Metrics.Textfile = v
	}

	if v := os.Getenv(EnvParallel); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return envError(EnvParallel, v, err)
		}
		c.Parser.Parallel = &b
	}
	if v := os.Getenv(EnvCacheSize); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return envError(EnvCacheSize, v, err)
		}
		c.Parser.CacheSize = &n
	}

	for _, name := range parser.PassNames() {
		key := EnvWeightPrefix + strings.ToUpper(name)
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return envError(key, v, err)
		}
		if c.Parser.Weights == nil {
			c.Parser.Weights = make(map[string]float64)
		}
		c.Parser.Weights[name] = w
	}

	return nil
}

func envError(key, value string, err error) error {
	return gperrors.ConfigError(fmt.Sprintf("invalid value %q for %s", value, key), err).
		WithDetail("env", key)
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Parser.Marker) != 1 {
		return gperrors.ConfigError(
			fmt.Sprintf("parser.marker must be a single character, got %q", c.Parser.Marker), nil)
	}

	known := parser.DefaultWeights()
	names := make([]string, 0, len(c.Parser.Weights))
	for name := range c.Parser.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return gperrors.New(gperrors.ErrCodeUnknownPass,
				fmt.Sprintf("parser.weights: unknown pass %q", name), nil).
				WithSuggestion(fmt.Sprintf("Known passes: %s", strings.Join(parser.PassNames(), ", ")))
		}
		if w := c.Parser.Weights[name]; !parser.ValidWeight(w) {
			return gperrors.New(gperrors.ErrCodeInvalidWeight,
				fmt.Sprintf("parser.weights.%s must be a finite number greater than 0, got %g", name, w), nil)
		}
	}

	if _, err := c.FileCategories(); err != nil {
		return err
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return gperrors.ConfigError(
			fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return gperrors.ConfigError("logging.max_size_mb and logging.max_files must be non-negative", nil)
	}

	return nil
}

// MarkerRune returns the marker character.
func (c *Config) MarkerRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Parser.Marker)
	return r
}

// ParallelEnabled reports whether passes run concurrently.
func (c *Config) ParallelEnabled() bool {
	return c.Parser.Parallel == nil || *c.Parser.Parallel
}

// CacheEntries returns the ranked-query cache size. Zero or less disables
// the cache.
func (c *Config) CacheEntries() int {
	if c.Parser.CacheSize == nil {
		return parser.DefaultCacheSize
	}
	return *c.Parser.CacheSize
}

// FileCategories returns Gazetteer.Files keyed by category.
func (c *Config) FileCategories() (map[gazetteer.Category]string, error) {
	files := make(map[gazetteer.Category]string, len(c.Gazetteer.Files))
	for name, path := range c.Gazetteer.Files {
		cat, err := gazetteer.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		files[cat] = path
	}
	return files, nil
}

// LoggingConfig converts the logging section for logging.Setup.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:         c.Logging.Level,
		FilePath:      c.Logging.File,
		MaxSizeMB:     c.Logging.MaxSizeMB,
		MaxFiles:      c.Logging.MaxFiles,
		WriteToStderr: true,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return gperrors.New(gperrors.ErrCodeInternal, "failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return gperrors.New(gperrors.ErrCodeFilePermission, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return gperrors.New(gperrors.ErrCodeFilePermission, "failed to write config file", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
