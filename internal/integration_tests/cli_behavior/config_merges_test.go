package integration_tests

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/app"
	"github.com/recalchq/recalc/internal/cli"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Happy Path with all flags",
			args: []string{
				"-script", "/test/graph.eq",
				"--language=hcl",
				"--log-level=debug",
				"--log-format=text",
				"--max-concurrent=2",
				"--metrics-port=8080",
				"--parse-cache=64",
			},
			expectedConfig: &app.Config{
				ScriptPath:     "/test/graph.eq",
				Language:       "hcl",
				LogFormat:      "text",
				LogLevel:       "debug",
				MaxConcurrent:  2,
				MetricsPort:    8080,
				ParseCacheSize: 64,
			},
		},
		{
			name: "Shorthand flag and defaults",
			args: []string{"-s", "/short/path.eq"},
			expectedConfig: &app.Config{
				ScriptPath:     "/short/path.eq",
				Language:       "starlark",
				LogFormat:      "json",
				LogLevel:       "info",
				MaxConcurrent:  1,
				MetricsPort:    0,
				ParseCacheSize: 128,
			},
		},
		{
			name: "Positional argument for path",
			args: []string{"/positional/path.eq"},
			expectedConfig: &app.Config{
				ScriptPath:     "/positional/path.eq",
				Language:       "starlark",
				LogFormat:      "json",
				LogLevel:       "info",
				MaxConcurrent:  1,
				MetricsPort:    0,
				ParseCacheSize: 128,
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.True(t, strings.Contains(output, "Usage:"), "Expected help text to be printed")
			},
		},
		{
			name:      "Invalid log level returns an error",
			args:      []string{"--log-level=foo", "/path.eq"},
			expectErr: true,
		},
		{
			name:      "Invalid log format returns an error",
			args:      []string{"--log-format=yaml", "/path.eq"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			appConfig, shouldExit, err := cli.Parse(tc.args, out)

			// --- Assert ---
			if tc.expectErr {
				require.Error(t, err)
				_, isExitError := err.(*cli.ExitError)
				require.True(t, isExitError, "Expected error to be of type ExitError")
				return // End test here if an error is expected
			}
			require.NoError(t, err)

			require.Equal(t, tc.expectExit, shouldExit)

			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, appConfig); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
		})
	}
}

// Test for: config file values merge with explicit flags
func TestParse_ConfigFileMergesWithFlags(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	configPath := filepath.Join(t.TempDir(), "recalc.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
script = "from-file.eq"
language = "hcl"
log_level = "debug"
max_concurrent = 4
`), 0o644))

	// --- Act ---
	// The explicit -log-level flag must beat the file; everything else the
	// file sets survives, and untouched fields fall back to defaults.
	out := &bytes.Buffer{}
	appConfig, shouldExit, err := cli.Parse([]string{"-config", configPath, "-log-level", "warn"}, out)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)

	expected := &app.Config{
		ScriptPath:     "from-file.eq",
		ConfigPath:     configPath,
		Language:       "hcl",
		LogFormat:      "json",
		LogLevel:       "warn",
		MaxConcurrent:  4,
		MetricsPort:    0,
		ParseCacheSize: 128,
	}
	if diff := cmp.Diff(expected, appConfig); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}
