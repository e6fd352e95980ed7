package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gperrors "github.com/tomlemeuch/grandpy/internal/errors"
	"github.com/tomlemeuch/grandpy/internal/gazetteer"
	"github.com/tomlemeuch/grandpy/internal/parser"
)

// isolate points the user config at an empty directory and clears GRANDPY_*
// variables for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{EnvDBPath, EnvLogLevel, EnvLogFile, EnvMarker, EnvParallel, EnvCacheSize, EnvMetricsTextfile} {
		t.Setenv(key, "")
	}
	for _, name := range parser.PassNames() {
		t.Setenv(EnvWeightPrefix+strings.ToUpper(name), "")
	}
	return t.TempDir()
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "", cfg.Gazetteer.DBPath)
	assert.Equal(t, "'", cfg.Parser.Marker)
	assert.Equal(t, '\'', cfg.MarkerRune())
	assert.True(t, cfg.ParallelEnabled())
	assert.Equal(t, parser.DefaultCacheSize, cfg.CacheEntries())
	assert.Equal(t, parser.DefaultWeights(), cfg.Parser.Weights)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, 5, cfg.Logging.MaxFiles)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	// Given a user config and a project config
	dir := isolate(t)
	userPath := GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0755))
	require.NoError(t, os.WriteFile(userPath, []byte(`
gazetteer:
  db_path: /var/lib/grandpy/user.db
parser:
  weights:
    cities: 2.0
    countries: 1.5
logging:
  level: info
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(`
parser:
  parallel: false
  weights:
    cities: 3.0
`), 0644))

	// When loading
	cfg, err := Load(dir)

	// Then project values win, user values fill in, defaults remain
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/grandpy/user.db", cfg.Gazetteer.DBPath)
	assert.False(t, cfg.ParallelEnabled())
	assert.Equal(t, 3.0, cfg.Parser.Weights[parser.PassCities])
	assert.Equal(t, 1.5, cfg.Parser.Weights[parser.PassCountries])
	assert.Equal(t, 1.2, cfg.Parser.Weights[parser.PassDictionaryWords])
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YmlFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".grandpy.yml"), []byte("parser:\n  marker: \"#\"\n"), 0644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, '#', cfg.MarkerRune())
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte("parser:\n  cache_size: 10\n"), 0644))
	t.Setenv(EnvDBPath, "/tmp/env.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvMarker, "’")
	t.Setenv(EnvParallel, "false")
	t.Setenv(EnvCacheSize, "-1")
	t.Setenv(EnvMetricsTextfile, "/tmp/grandpy.prom")
	t.Setenv(EnvWeightPrefix+"PROPER_NOUNS", "1.7")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Gazetteer.DBPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, '’', cfg.MarkerRune())
	assert.False(t, cfg.ParallelEnabled())
	assert.Equal(t, -1, cfg.CacheEntries())
	assert.Equal(t, "/tmp/grandpy.prom", cfg.Metrics.Textfile)
	assert.Equal(t, 1.7, cfg.Parser.Weights[parser.PassProperNouns])
}

func TestLoad_ZeroCacheSizeDisablesCache(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{name: "explicit zero", yaml: "parser:\n  cache_size: 0\n", want: 0},
		{name: "explicit size", yaml: "parser:\n  cache_size: 16\n", want: 16},
		{name: "unset", yaml: "parser:\n  marker: \"'\"\n", want: parser.DefaultCacheSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a project config setting (or omitting) cache_size
			dir := isolate(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(tt.yaml), 0644))

			// When: loading
			cfg, err := Load(dir)

			// Then: an explicit zero survives the merge
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.CacheEntries())
		})
	}
}

func TestLoad_InfiniteWeightEnvRejected(t *testing.T) {
	dir := isolate(t)
	t.Setenv(EnvWeightPrefix+"CITIES", "Inf")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, gperrors.ErrCodeInvalidWeight, gperrors.GetCode(err))
}

func TestLoad_MalformedEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: EnvParallel, value: "sometimes"},
		{key: EnvCacheSize, value: "lots"},
		{key: EnvWeightPrefix + "CITIES", value: "heavy"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			dir := isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(dir)

			require.Error(t, err)
			assert.Equal(t, gperrors.ErrCodeConfigInvalid, gperrors.GetCode(err))
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte("parser: [unclosed"), 0644))

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, gperrors.ErrCodeConfigInvalid, gperrors.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		wantCode string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "empty marker", mutate: func(c *Config) { c.Parser.Marker = "" }, wantCode: gperrors.ErrCodeConfigInvalid},
		{name: "long marker", mutate: func(c *Config) { c.Parser.Marker = "''" }, wantCode: gperrors.ErrCodeConfigInvalid},
		{name: "unknown pass", mutate: func(c *Config) { c.Parser.Weights["streets"] = 1 }, wantCode: gperrors.ErrCodeUnknownPass},
		{name: "zero weight", mutate: func(c *Config) { c.Parser.Weights[parser.PassWords] = 0 }, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "infinite weight", mutate: func(c *Config) { c.Parser.Weights[parser.PassCities] = math.Inf(1) }, wantCode: gperrors.ErrCodeInvalidWeight},
		{name: "unknown category", mutate: func(c *Config) { c.Gazetteer.Files = map[string]string{"streets": "x.txt"} }, wantCode: gperrors.ErrCodeUnknownCategory},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantCode: gperrors.ErrCodeConfigInvalid},
		{name: "negative rotation", mutate: func(c *Config) { c.Logging.MaxFiles = -1 }, wantCode: gperrors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, gperrors.GetCode(err))
		})
	}
}

func TestFileCategories(t *testing.T) {
	cfg := NewConfig()
	cfg.Gazetteer.Files = map[string]string{"cities": "/data/cities.txt", "stop-words": "/data/stop.txt"}

	files, err := cfg.FileCategories()

	require.NoError(t, err)
	assert.Equal(t, map[gazetteer.Category]string{
		gazetteer.Cities:    "/data/cities.txt",
		gazetteer.StopWords: "/data/stop.txt",
	}, files)
}

func TestLoggingConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging.File = "/tmp/grandpy.log"

	lc := cfg.LoggingConfig()

	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "/tmp/grandpy.log", lc.FilePath)
	assert.True(t, lc.WriteToStderr)
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	dir := isolate(t)
	cfg := NewConfig()
	cfg.Gazetteer.DBPath = "/srv/grandpy.db"
	cfg.Parser.Weights[parser.PassCities] = 2.2

	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ProjectConfigName)))
	loaded, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetUserConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	assert.Equal(t, filepath.Join("/xdg", "grandpy", "config.yaml"), GetUserConfigPath())
}

func TestDefaultDBPath(t *testing.T) {
	assert.Equal(t, "gazetteer.db", filepath.Base(DefaultDBPath()))
}
