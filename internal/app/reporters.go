package app

import (
	"github.com/recalchq/recalc/internal/signals"
	"github.com/recalchq/recalc/internal/tasks"
)

// subscribeReporters attaches debug-level log observers to the engine hub
// and the task progress signal. The engine and task manager log their own
// lifecycles; the reporters cover the per-equation and per-tick events they
// leave out. Connections live on the app scope and die with Close.
func (a *App) subscribeReporters() {
	hub := a.engine.Signals()
	a.scope.Track(hub.OnEquationUpdated(func(ch signals.EquationChange) {
		a.logger.Debug("Equation updated.",
			"name", ch.Equation.Name(),
			"fields", ch.Mask.String(),
			"status", ch.Equation.Status().String())
	}))
	a.scope.Track(a.tasks.OnProgress(func(p tasks.Progress) {
		a.logger.Debug("Task progress.", "id", p.ID, "percent", p.Percent, "message", p.Message)
	}))
}
