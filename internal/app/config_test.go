package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/app"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := app.NewConfig(app.Config{ScriptPath: "script.eq"})
	require.NoError(t, err)
	assert.Equal(t, app.DefaultLanguage, cfg.Language)
	assert.Equal(t, app.DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, app.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, app.DefaultMaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, app.DefaultParseCacheSize, cfg.ParseCacheSize)
	assert.Zero(t, cfg.MetricsPort)
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]app.Config{
		"missing script path": {},
		"bad log format":      {ScriptPath: "s.eq", LogFormat: "xml"},
		"bad log level":       {ScriptPath: "s.eq", LogLevel: "verbose"},
		"negative workers":    {ScriptPath: "s.eq", MaxConcurrent: -1},
		"metrics port range":  {ScriptPath: "s.eq", MetricsPort: 70000},
		"bad cache size":      {ScriptPath: "s.eq", ParseCacheSize: -5},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := app.NewConfig(cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recalc.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
script = "graph.eq"
language = "hcl"
log_level = "debug"
max_concurrent = 1
metrics_port = 9102
`), 0o644))

	cfg := app.Config{LogFormat: "text"}
	require.NoError(t, app.LoadConfigFile(path, &cfg))
	assert.Equal(t, "graph.eq", cfg.ScriptPath)
	assert.Equal(t, "hcl", cfg.Language)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9102, cfg.MetricsPort)
	// Keys absent from the file leave existing values alone.
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfigFileErrors(t *testing.T) {
	cfg := app.Config{}
	assert.Error(t, app.LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"), &cfg))

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("script = [unclosed"), 0o644))
	assert.Error(t, app.LoadConfigFile(bad, &cfg))
}
