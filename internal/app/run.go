package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/recalchq/recalc/internal/ctxlog"
	"github.com/recalchq/recalc/internal/engine"
)

// Run executes one full pass: load the script, register its statement
// blocks, drive a background update to completion, and print the results
// table to the output writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.startMetricsServer()

	statements, err := a.loadStatements(ctx, a.cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	if len(statements) == 0 {
		a.logger.Warn("No statements found, nothing to update.", "path", a.cfg.ScriptPath)
		return nil
	}

	var registered, rejected int
	for _, statement := range statements {
		if _, err := a.engine.AddGroup(ctx, statement); err != nil {
			rejected++
			a.logger.Error("Statement rejected.", "statement", statement, "error", err)
			continue
		}
		registered++
	}
	if registered == 0 {
		return fmt.Errorf("no statement in %s was accepted", a.cfg.ScriptPath)
	}

	a.logger.Info("🚀 Starting update pass.", "groups", registered, "rejected", rejected)

	// Subscribing before the enqueue guarantees the drained notification is
	// not missed, however fast the task finishes.
	drained := make(chan struct{}, 1)
	conn := a.tasks.OnQueueDrained(func(struct{}) {
		select {
		case drained <- struct{}{}:
		default:
		}
	})
	defer conn.Disconnect()

	id := a.tasks.Enqueue(engine.NewUpdateAllTask(a.engine), 0)

	cancelled := false
	select {
	case <-drained:
	case <-ctx.Done():
		cancelled = true
		a.logger.Warn("Run cancelled, stopping update.", "error", ctx.Err())
		a.tasks.Cancel(id)
		// The task winds down cooperatively; values written so far stay.
		<-drained
	}

	a.logger.Info("🏁 Update finished.")
	a.printResults()
	if cancelled {
		return ctx.Err()
	}
	return nil
}

// printResults renders a name / status / value row for every equation in
// group insertion order. Failed equations show their diagnostic next to the
// status.
func (a *App) printResults() {
	w := tabwriter.NewWriter(a.outW, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tVALUE")
	for _, group := range a.engine.Groups() {
		for _, eq := range group.Equations() {
			status := eq.Status().String()
			if msg := eq.Message(); msg != "" {
				status = fmt.Sprintf("%s (%s)", status, msg)
			}
			value := ""
			if v, ok := a.engine.Env().Get(eq.Name()); ok {
				value = v.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", eq.Name(), status, value)
		}
	}
	w.Flush()
}
