package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recalchq/recalc/internal/tasks"
)

// The task types wrap manager operations for the background task manager.
// They assume the manager's single-goroutine contract is upheld by running
// them with a concurrency limit of one.

// UpdateAllTask re-evaluates every dirty equation.
type UpdateAllTask struct {
	m *Manager
}

// NewUpdateAllTask returns a task updating all of m's dirty equations.
func NewUpdateAllTask(m *Manager) *UpdateAllTask {
	return &UpdateAllTask{m: m}
}

// Name implements tasks.Task.
func (t *UpdateAllTask) Name() string { return "update-all" }

// Execute implements tasks.Task. The result is an UpdateSummary; on
// cancellation the partial summary is returned together with the context
// error.
func (t *UpdateAllTask) Execute(ctx context.Context, progress tasks.ProgressFunc) (any, error) {
	progress(0, "update started")
	progress(10, "resolving update order")
	summary := t.m.updateAll(ctx, updateProgress(progress))
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	progress(100, "update finished")
	return summary, nil
}

// UpdateGroupTask re-evaluates the dirty equations of one group.
type UpdateGroupTask struct {
	m  *Manager
	id uuid.UUID
}

// NewUpdateGroupTask returns a task updating the group with the given id.
func NewUpdateGroupTask(m *Manager, id uuid.UUID) *UpdateGroupTask {
	return &UpdateGroupTask{m: m, id: id}
}

// Name implements tasks.Task.
func (t *UpdateGroupTask) Name() string { return "update-group-" + t.id.String() }

// Execute implements tasks.Task.
func (t *UpdateGroupTask) Execute(ctx context.Context, progress tasks.ProgressFunc) (any, error) {
	progress(0, "update started")
	progress(10, "resolving update order")
	summary, err := t.m.updateGroupNames(ctx, t.id, updateProgress(progress))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	progress(100, "update finished")
	return summary, nil
}

// EvalTask evaluates a free-standing expression.
type EvalTask struct {
	m          *Manager
	expression string
}

// NewEvalTask returns a task evaluating expression against m's context.
func NewEvalTask(m *Manager, expression string) *EvalTask {
	return &EvalTask{m: m, expression: expression}
}

// Name implements tasks.Task.
func (t *EvalTask) Name() string { return "eval" }

// Execute implements tasks.Task. The result is the lang.InterpretResult.
func (t *EvalTask) Execute(ctx context.Context, progress tasks.ProgressFunc) (any, error) {
	progress(0, "evaluation started")
	res := t.m.Eval(ctx, t.expression)
	progress(100, "evaluation finished")
	return res, nil
}

// updateProgress maps per-equation completion onto the 10..90 band of the
// task's progress scale.
func updateProgress(progress tasks.ProgressFunc) progressHook {
	return func(done, total int) {
		percent := 90
		if total > 0 {
			percent = 10 + 80*done/total
		}
		progress(percent, fmt.Sprintf("updated %d of %d equations", done, total))
	}
}
