package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/recalchq/recalc/internal/equation"
	"github.com/recalchq/recalc/internal/lang"
)

// AddGroup parses statement and registers its equations as a new group. The
// whole call is transactional: a parse failure, duplicate name, or dependency
// cycle leaves the manager exactly as it was.
func (m *Manager) AddGroup(ctx context.Context, statement string) (uuid.UUID, error) {
	res := m.parser.Parse(statement, lang.ParseStatement)
	if !res.OK() {
		m.logger.Debug("Statement rejected by the parser.", "status", res.Status, "message", res.Message)
		return uuid.Nil, &ParseError{Message: res.Message}
	}

	seen := make(map[string]struct{}, len(res.Items))
	for _, item := range res.Items {
		if _, dup := seen[item.Name]; dup {
			return uuid.Nil, &DuplicateNameError{Name: item.Name, Content: item.Code}
		}
		seen[item.Name] = struct{}{}
		if _, taken := m.owner[item.Name]; taken {
			return uuid.Nil, &DuplicateNameError{Name: item.Name, Content: item.Code}
		}
	}

	batch := m.graph.Begin()
	defer batch.Rollback()
	for _, item := range res.Items {
		m.graph.AddNode(item.Name)
	}
	for _, item := range res.Items {
		for _, dep := range item.Dependencies {
			m.graph.AddEdge(item.Name, dep)
		}
	}
	if err := batch.Commit(); err != nil {
		m.logger.Debug("Statement introduces a dependency cycle.", "error", err)
		return uuid.Nil, err
	}

	id := uuid.New()
	group := equation.NewGroup(id, statement)
	for _, item := range res.Items {
		eq := equation.New(item.Name, item.Code, equation.TypeFromItem(item.Type), item.Dependencies, id)
		group.Add(eq)
		m.owner[item.Name] = id
	}
	m.groups[id] = group
	m.groupOrder = append(m.groupOrder, id)
	for _, name := range group.Names() {
		m.graph.Invalidate(name)
	}

	m.logger.Debug("Equation group added.", "group_id", id, "equations", group.Len())
	m.hub.EmitGroupAdded(group)
	for _, eq := range group.Equations() {
		m.hub.EmitEquationAdded(eq)
	}
	return id, nil
}

// EditGroup re-parses statement against the existing group and applies the
// difference: equations disappearing from the statement are removed, new
// names are added, and surviving equations have content, type, and
// dependencies updated in place. Graph rewiring is transactional; a cycle
// rolls everything back.
func (m *Manager) EditGroup(ctx context.Context, id uuid.UUID, statement string) error {
	group, ok := m.groups[id]
	if !ok {
		return &NotFoundError{Kind: "equation group", Key: id.String()}
	}

	res := m.parser.Parse(statement, lang.ParseStatement)
	if !res.OK() {
		m.logger.Debug("Statement rejected by the parser.", "group_id", id, "status", res.Status, "message", res.Message)
		return &ParseError{Message: res.Message}
	}

	seen := make(map[string]struct{}, len(res.Items))
	for _, item := range res.Items {
		if _, dup := seen[item.Name]; dup {
			return &DuplicateNameError{Name: item.Name, Content: item.Code}
		}
		seen[item.Name] = struct{}{}
		if owner, taken := m.owner[item.Name]; taken && owner != id {
			return &DuplicateNameError{Name: item.Name, Content: item.Code}
		}
	}

	var removed []string
	for _, name := range group.Names() {
		if _, stays := seen[name]; !stays {
			removed = append(removed, name)
		}
	}
	var added, kept []lang.ParseItem
	for _, item := range res.Items {
		if group.Has(item.Name) {
			kept = append(kept, item)
		} else {
			added = append(added, item)
		}
	}

	batch := m.graph.Begin()
	defer batch.Rollback()
	for _, name := range removed {
		// Dependents of the vacated name stay dirty even though the node
		// disappears; their next update reports the missing dependency.
		m.graph.MarkDirty(name)
		m.graph.RemoveEdgesFrom(name)
		m.graph.RemoveNode(name)
	}
	for _, item := range added {
		m.graph.AddNode(item.Name)
	}
	for _, item := range added {
		for _, dep := range item.Dependencies {
			m.graph.AddEdge(item.Name, dep)
		}
	}
	for _, item := range kept {
		eq, _ := group.Get(item.Name)
		if !equalNames(eq.Dependencies(), item.Dependencies) {
			m.graph.RemoveEdgesFrom(item.Name)
			for _, dep := range item.Dependencies {
				m.graph.AddEdge(item.Name, dep)
			}
		}
	}
	if err := batch.Commit(); err != nil {
		m.logger.Debug("Edit introduces a dependency cycle.", "group_id", id, "error", err)
		return err
	}

	for i := len(removed) - 1; i >= 0; i-- {
		name := removed[i]
		if eq, ok := group.Get(name); ok {
			m.hub.EmitEquationRemoving(eq)
		}
		group.Remove(name)
		delete(m.owner, name)
		m.env.Remove(name)
	}
	for _, item := range added {
		eq := equation.New(item.Name, item.Code, equation.TypeFromItem(item.Type), item.Dependencies, id)
		group.Add(eq)
		m.owner[item.Name] = id
		m.graph.Invalidate(item.Name)
		m.hub.EmitEquationAdded(eq)
	}
	for _, item := range kept {
		eq, _ := group.Get(item.Name)
		var mask equation.FieldMask
		if eq.SetContent(item.Code) {
			mask |= equation.FieldContent
		}
		if eq.SetType(equation.TypeFromItem(item.Type)) {
			mask |= equation.FieldType
		}
		if eq.SetDependencies(item.Dependencies) {
			mask |= equation.FieldDependencies
		}
		if mask != 0 {
			m.graph.Invalidate(item.Name)
			m.hub.EmitEquationUpdated(eq, mask)
		}
	}

	var groupMask equation.GroupFieldMask
	if group.SetStatement(statement) {
		groupMask |= equation.GroupFieldStatement
	}
	if len(removed) > 0 || len(added) > 0 {
		groupMask |= equation.GroupFieldEquationCount
	}
	m.logger.Debug("Equation group edited.",
		"group_id", id, "removed", len(removed), "added", len(added), "kept", len(kept))
	if groupMask != 0 {
		m.hub.EmitGroupUpdated(group, groupMask)
	}
	return nil
}

// RemoveGroup unregisters the group and every equation in it. Dependents in
// other groups keep their references; the vacated names show up as missing
// dependencies on their next update.
func (m *Manager) RemoveGroup(ctx context.Context, id uuid.UUID) error {
	group, ok := m.groups[id]
	if !ok {
		return &NotFoundError{Kind: "equation group", Key: id.String()}
	}

	equations := group.Equations()
	for i := len(equations) - 1; i >= 0; i-- {
		eq := equations[i]
		name := eq.Name()
		m.hub.EmitEquationRemoving(eq)
		m.graph.MarkDirty(name)
		m.graph.RemoveEdgesFrom(name)
		m.graph.RemoveNode(name)
		m.env.Remove(name)
		delete(m.owner, name)
		group.Remove(name)
	}

	m.hub.EmitGroupRemoving(group)
	delete(m.groups, id)
	for i, gid := range m.groupOrder {
		if gid == id {
			m.groupOrder = append(m.groupOrder[:i], m.groupOrder[i+1:]...)
			break
		}
	}
	m.logger.Debug("Equation group removed.", "group_id", id, "equations", len(equations))
	return nil
}

// Reset removes every group with the full signal discipline, then clears the
// graph and the context. The event stamp counter keeps advancing so stamps
// stay monotone across resets.
func (m *Manager) Reset(ctx context.Context) {
	ids := make([]uuid.UUID, len(m.groupOrder))
	copy(ids, m.groupOrder)
	for i := len(ids) - 1; i >= 0; i-- {
		// The group is known to exist; RemoveGroup cannot fail here.
		_ = m.RemoveGroup(ctx, ids[i])
	}
	m.graph.Reset()
	m.env.Clear()
	m.logger.Debug("Manager reset.", "groups_removed", len(ids))
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
