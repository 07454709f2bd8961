package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/recalchq/recalc/internal/ctxlog"
	"github.com/recalchq/recalc/internal/engine"
	"github.com/recalchq/recalc/internal/lang"
	"github.com/recalchq/recalc/internal/registry"
	"github.com/recalchq/recalc/internal/signals"
	"github.com/recalchq/recalc/internal/tasks"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	ctx    context.Context

	registry *registry.Registry
	engine   *engine.Manager
	tasks    *tasks.Manager
	promReg  *prometheus.Registry
	scope    signals.Scope

	metrics *metricsServer
}

// Option adjusts App construction.
type Option func(*App)

// WithRegistry replaces the built-in language registry. Tests use it to
// inject scripted adapters.
func WithRegistry(reg *registry.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// NewApp wires a fully initialized application: an isolated logger, the
// configured language adapter behind a parse cache, the engine, and a task
// manager bounded to the engine's single-goroutine contract.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	a := &App{outW: outW, cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	a.ctx = ctxlog.WithLogger(context.Background(), a.logger)
	a.logger.Debug("Logger configured successfully.")

	if a.registry == nil {
		a.registry = defaultRegistry()
	}
	adapter, ok := a.registry.Lookup(cfg.Language)
	if !ok {
		return nil, fmt.Errorf("unknown language %q: registered languages are %s",
			cfg.Language, strings.Join(a.registry.Names(), ", "))
	}

	parser, err := lang.NewCachedParser(adapter.NewParser(), cfg.ParseCacheSize)
	if err != nil {
		return nil, fmt.Errorf("configuring parse cache: %w", err)
	}
	a.logger.Debug("Language adapter resolved.", "language", cfg.Language, "parse_cache", cfg.ParseCacheSize)

	a.engine = engine.New(parser, adapter.NewInterpreter(), engine.WithLogger(a.logger))

	a.promReg = prometheus.NewRegistry()
	a.tasks = tasks.NewManager(a.ctx,
		tasks.WithMaxConcurrent(cfg.MaxConcurrent),
		tasks.WithMetrics(tasks.NewMetrics(a.promReg)),
		tasks.WithLogger(a.logger))

	a.subscribeReporters()
	a.logger.Debug("Application wired.", "language", cfg.Language, "max_concurrent", cfg.MaxConcurrent)
	return a, nil
}

// Engine returns the equation manager. This is primarily for testing.
func (a *App) Engine() *engine.Manager {
	return a.engine
}

// Tasks returns the background task manager. This is primarily for testing.
func (a *App) Tasks() *tasks.Manager {
	return a.tasks
}

// Close tears down the reporters, the task manager, and the metrics server.
func (a *App) Close(ctx context.Context) error {
	a.scope.Close()
	err := a.tasks.Shutdown(ctx)
	if closeErr := a.closeMetricsServer(ctx); err == nil {
		err = closeErr
	}
	return err
}
