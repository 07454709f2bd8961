package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recalchq/recalc/internal/ctxlog"
)

// metricsServer wraps the optional Prometheus HTTP listener.
type metricsServer struct {
	srv *http.Server
}

// startMetricsServer begins serving /metrics on the configured port in the
// background. A port of zero leaves the server off.
func (a *App) startMetricsServer() {
	logger := ctxlog.FromContext(a.ctx)
	if a.cfg.MetricsPort <= 0 {
		logger.Debug("Metrics server not started: disabled.")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", a.cfg.MetricsPort)
	a.metrics = &metricsServer{srv: &http.Server{Addr: addr, Handler: mux}}

	go func() {
		logger.Info("Metrics server starting.", "address", fmt.Sprintf("http://localhost%s/metrics", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown; only
		// other errors are worth reporting.
		if err := a.metrics.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed unexpectedly.", "error", err)
		}
	}()
}

func (a *App) closeMetricsServer(ctx context.Context) error {
	if a.metrics == nil {
		return nil
	}
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Shutting down metrics server.")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.metrics.srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown failed.", "error", err)
		return err
	}
	a.metrics = nil
	logger.Debug("Metrics server shut down gracefully.")
	return nil
}
