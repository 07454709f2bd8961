package cli_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/app"
	"github.com/recalchq/recalc/internal/cli"
	"github.com/recalchq/recalc/internal/testutil"
)

func TestParseHelpRequestsCleanExit(t *testing.T) {
	out := &testutil.SafeBuffer{}
	cfg, shouldExit, err := cli.Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseWithoutScriptPrintsUsage(t *testing.T) {
	out := &testutil.SafeBuffer{}
	cfg, shouldExit, err := cli.Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "SCRIPT_PATH")
}

func TestParsePositionalScript(t *testing.T) {
	out := &testutil.SafeBuffer{}
	cfg, shouldExit, err := cli.Parse([]string{"graph.eq"}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "graph.eq", cfg.ScriptPath)
	assert.Equal(t, app.DefaultLanguage, cfg.Language)
	assert.Equal(t, app.DefaultMaxConcurrent, cfg.MaxConcurrent)
}

func TestParseFlags(t *testing.T) {
	out := &testutil.SafeBuffer{}
	cfg, shouldExit, err := cli.Parse([]string{
		"-script", "graph.eq",
		"-language", "hcl",
		"-log-format", "text",
		"-log-level", "debug",
		"-max-concurrent", "2",
		"-metrics-port", "9102",
		"-parse-cache", "64",
	}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "graph.eq", cfg.ScriptPath)
	assert.Equal(t, "hcl", cfg.Language)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.MaxConcurrent)
	assert.Equal(t, 9102, cfg.MetricsPort)
	assert.Equal(t, 64, cfg.ParseCacheSize)
}

func TestParseShorthandScriptFlag(t *testing.T) {
	out := &testutil.SafeBuffer{}
	cfg, shouldExit, err := cli.Parse([]string{"-s", "graph.eq"}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "graph.eq", cfg.ScriptPath)
}

func TestParseConfigFileMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recalc.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
script = "from-file.eq"
language = "hcl"
log_level = "debug"
metrics_port = 9102
`), 0o644))

	t.Run("file values apply when flags are unset", func(t *testing.T) {
		out := &testutil.SafeBuffer{}
		cfg, shouldExit, err := cli.Parse([]string{"-config", path}, out)
		require.NoError(t, err)
		require.False(t, shouldExit)
		assert.Equal(t, "from-file.eq", cfg.ScriptPath)
		assert.Equal(t, "hcl", cfg.Language)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 9102, cfg.MetricsPort)
	})

	t.Run("explicit flags override the file", func(t *testing.T) {
		out := &testutil.SafeBuffer{}
		cfg, shouldExit, err := cli.Parse([]string{
			"-config", path,
			"-log-level", "warn",
			"-metrics-port", "0",
			"override.eq",
		}, out)
		require.NoError(t, err)
		require.False(t, shouldExit)
		assert.Equal(t, "override.eq", cfg.ScriptPath)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Zero(t, cfg.MetricsPort)
		// Untouched file values still win over built-in defaults.
		assert.Equal(t, "hcl", cfg.Language)
	})
}

func TestParseConfigFileMissing(t *testing.T) {
	out := &testutil.SafeBuffer{}
	_, _, err := cli.Parse([]string{"-config", filepath.Join(t.TempDir(), "nope.toml"), "graph.eq"}, out)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInvalidValues(t *testing.T) {
	cases := map[string][]string{
		"bad log format":   {"-log-format", "xml", "graph.eq"},
		"bad log level":    {"-log-level", "verbose", "graph.eq"},
		"bad concurrency":  {"-max-concurrent", "-3", "graph.eq"},
		"bad metrics port": {"-metrics-port", "99999", "graph.eq"},
		"unknown flag":     {"-bogus", "graph.eq"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			out := &testutil.SafeBuffer{}
			_, shouldExit, err := cli.Parse(args, out)
			assert.False(t, shouldExit)
			var exitErr *cli.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
