package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/recalchq/recalc/internal/depgraph"
	"github.com/recalchq/recalc/internal/equation"
	"github.com/recalchq/recalc/internal/lang"
)

// UpdateSummary counts the equations an update pass touched. Equations
// skipped by the staleness filter appear in neither count.
type UpdateSummary struct {
	Updated int
	Failed  int
}

// progressHook observes per-equation progress of an update pass.
type progressHook func(done, total int)

type updateOutcome int

const (
	outcomeSkipped updateOutcome = iota
	outcomeUpdated
	outcomeFailed
)

// Update re-evaluates every dirty equation in topological order.
func (m *Manager) Update(ctx context.Context) UpdateSummary {
	return m.updateAll(ctx, nil)
}

func (m *Manager) updateAll(ctx context.Context, progress progressHook) UpdateSummary {
	return m.updateList(ctx, m.graph.TopologicalSort(), progress)
}

// UpdateEquation re-evaluates name and its dirty transitive dependents.
func (m *Manager) UpdateEquation(ctx context.Context, name string) (UpdateSummary, error) {
	if !m.HasEquation(name) {
		return UpdateSummary{}, &NotFoundError{Kind: "equation", Key: name}
	}
	return m.updateList(ctx, m.graph.TopologicalSortFrom(name), nil), nil
}

// UpdateGroup re-evaluates the group's dirty equations in global topological
// order.
func (m *Manager) UpdateGroup(ctx context.Context, id uuid.UUID) (UpdateSummary, error) {
	return m.updateGroupNames(ctx, id, nil)
}

func (m *Manager) updateGroupNames(ctx context.Context, id uuid.UUID, progress progressHook) (UpdateSummary, error) {
	group, ok := m.groups[id]
	if !ok {
		return UpdateSummary{}, &NotFoundError{Kind: "equation group", Key: id.String()}
	}
	var order []string
	for _, name := range m.graph.TopologicalSort() {
		if group.Has(name) {
			order = append(order, name)
		}
	}
	return m.updateList(ctx, order, progress), nil
}

// Eval evaluates a free-standing expression against the current context. The
// graph and the registered equations are untouched.
func (m *Manager) Eval(ctx context.Context, expression string) lang.InterpretResult {
	return m.interp.Interpret(ctx, expression, m.env, lang.ModeEval)
}

// updateList runs updateOne over the dirty subset of order, stopping early
// when ctx is cancelled. Values already written stay in place on
// cancellation; unprocessed nodes remain dirty.
func (m *Manager) updateList(ctx context.Context, order []string, progress progressHook) UpdateSummary {
	var dirty []string
	for _, name := range order {
		if m.graph.IsDirty(name) {
			dirty = append(dirty, name)
		}
	}

	var summary UpdateSummary
	for i, name := range dirty {
		if err := ctx.Err(); err != nil {
			m.logger.Debug("Update pass cancelled.", "processed", i, "remaining", len(dirty)-i)
			break
		}
		switch m.updateOne(ctx, name) {
		case outcomeUpdated:
			summary.Updated++
		case outcomeFailed:
			summary.Failed++
		}
		if progress != nil {
			progress(i+1, len(dirty))
		}
	}
	return summary
}

// updateOne re-evaluates a single equation. The steps, in order: skip clean
// or unknown names; unsupported statement forms fail without interpretation;
// missing dependencies fail with the missing list; the staleness filter skips
// nodes whose inputs have not produced a newer event; otherwise the content
// is interpreted and the context entry, status, and message are reconciled.
func (m *Manager) updateOne(ctx context.Context, name string) updateOutcome {
	eq := m.findEquation(name)
	if eq == nil || !m.graph.IsDirty(name) {
		return outcomeSkipped
	}

	var mask equation.FieldMask
	finish := func(outcome updateOutcome) updateOutcome {
		m.graph.ClearDirty(name)
		if mask != 0 {
			m.hub.EmitEquationUpdated(eq, mask)
		}
		return outcome
	}

	if eq.Type() == equation.TypeError {
		if eq.SetStatus(lang.StatusTypeError) {
			mask |= equation.FieldStatus
		}
		if eq.SetMessage("unsupported statement form") {
			mask |= equation.FieldMessage
		}
		if m.env.Remove(name) {
			m.graph.StampNode(name)
			mask |= equation.FieldValue
		}
		return finish(outcomeFailed)
	}

	deps := eq.Dependencies()
	var missing []string
	for _, dep := range deps {
		if !m.graph.HasNode(dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		if eq.SetStatus(lang.StatusNameError) {
			mask |= equation.FieldStatus
		}
		if eq.SetMessage("missing: " + strings.Join(missing, ", ")) {
			mask |= equation.FieldMessage
		}
		if m.env.Remove(name) {
			m.graph.StampNode(name)
			mask |= equation.FieldValue
		}
		m.logger.Debug("Equation has missing dependencies.", "name", name, "missing", missing)
		return finish(outcomeFailed)
	}

	var maxDep depgraph.Stamp
	for _, dep := range deps {
		if s := m.graph.NodeStamp(dep); s > maxDep {
			maxDep = s
		}
	}
	if own := m.graph.NodeStamp(name); own > maxDep {
		// Inputs produced nothing newer than the last evaluation; the dirty
		// flag was pure propagation.
		return finish(outcomeSkipped)
	}

	mode := lang.ModeEval
	switch eq.Type() {
	case equation.TypeFunction, equation.TypeClass, equation.TypeImport, equation.TypeImportFrom:
		mode = lang.ModeExec
	}

	before, hadBefore := m.env.Get(name)
	res := m.interp.Interpret(ctx, eq.Content(), m.env, mode)
	if res.OK() {
		if mode == lang.ModeEval && res.Value != nil {
			if !hadBefore || !before.Equal(res.Value) {
				m.env.Set(name, res.Value)
				m.graph.StampNode(name)
				mask |= equation.FieldValue
			}
		} else {
			// Exec mode writes through the environment itself; only the
			// equation's own name is tracked for change stamping.
			after, hadAfter := m.env.Get(name)
			if hadAfter && (!hadBefore || !before.Equal(after)) {
				m.graph.StampNode(name)
				mask |= equation.FieldValue
			}
		}
		if eq.SetStatus(lang.StatusSuccess) {
			mask |= equation.FieldStatus
		}
		if eq.SetMessage("") {
			mask |= equation.FieldMessage
		}
		return finish(outcomeUpdated)
	}

	if eq.SetStatus(res.Status) {
		mask |= equation.FieldStatus
	}
	if eq.SetMessage(res.Message) {
		mask |= equation.FieldMessage
	}
	if m.env.Remove(name) {
		m.graph.StampNode(name)
		mask |= equation.FieldValue
	}
	m.logger.Debug("Equation evaluation failed.",
		"name", name, "status", res.Status, "message", res.Message)
	return finish(outcomeFailed)
}
