// Package testutil provides the shared harness for integration tests: it
// materializes equation scripts on disk, runs the application against them,
// and hands back the log output together with the live engine.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/app"
	"github.com/recalchq/recalc/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunOptions adjusts a harness run. The zero value runs the default
// language adapter at debug verbosity.
type RunOptions struct {
	// Language selects the adapter; empty means app.DefaultLanguage.
	Language string
	// Registry overrides the built-in adapter registry when set.
	Registry *registry.Registry
	// LogLevel overrides the default "debug" harness verbosity.
	LogLevel string
}

// RunScripts writes the given files into a fresh directory, runs the app
// against that directory, and returns the collected output. Scripts are
// loaded in lexical path order, so tests that need a cross-file evaluation
// order should number their file names.
func RunScripts(t *testing.T, files map[string]string, opts RunOptions) *HarnessResult {
	t.Helper()
	return RunScriptsWithContext(context.Background(), t, files, opts)
}

// RunScriptsWithContext is RunScripts driven by a caller-supplied context,
// for tests that exercise cancellation.
func RunScriptsWithContext(ctx context.Context, t *testing.T, files map[string]string, opts RunOptions) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = "debug"
	}
	cfg, err := app.NewConfig(app.Config{
		ScriptPath: dir,
		Language:   opts.Language,
		LogFormat:  "text",
		LogLevel:   logLevel,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	var appOpts []app.Option
	if opts.Registry != nil {
		appOpts = append(appOpts, app.WithRegistry(opts.Registry))
	}

	testApp, err := app.NewApp(logBuffer, cfg, appOpts...)
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = testApp.Close(closeCtx)
	})

	runErr := runRecovered(ctx, testApp)

	if os.Getenv("RECALC_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}

// runRecovered converts a panicking run into an error, so a broken adapter
// fails one test instead of taking down the whole binary.
func runRecovered(ctx context.Context, a *app.App) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application run panicked | %v", r)
		}
	}()
	return a.Run(ctx)
}
