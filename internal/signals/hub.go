package signals

import "github.com/recalchq/recalc/internal/equation"

// EquationChange is the payload of the equation update signal: the equation
// plus the set of fields the update touched.
type EquationChange struct {
	Equation *equation.Equation
	Mask     equation.FieldMask
}

// GroupChange is the payload of the group update signal.
type GroupChange struct {
	Group *equation.Group
	Mask  equation.GroupFieldMask
}

// Hub bundles the engine's equation and group event signals. Observers
// receive borrowed pointers valid for the duration of the emission; the
// removing signals fire while the entity is still registered.
type Hub struct {
	equationAdded    *Signal[*equation.Equation]
	equationRemoving *Signal[*equation.Equation]
	equationUpdated  *Signal[EquationChange]
	groupAdded       *Signal[*equation.Group]
	groupRemoving    *Signal[*equation.Group]
	groupUpdated     *Signal[GroupChange]
}

// NewHub returns a hub with all signals empty.
func NewHub() *Hub {
	return &Hub{
		equationAdded:    NewSignal[*equation.Equation](),
		equationRemoving: NewSignal[*equation.Equation](),
		equationUpdated:  NewSignal[EquationChange](),
		groupAdded:       NewSignal[*equation.Group](),
		groupRemoving:    NewSignal[*equation.Group](),
		groupUpdated:     NewSignal[GroupChange](),
	}
}

// OnEquationAdded subscribes to equation registrations.
func (h *Hub) OnEquationAdded(fn func(*equation.Equation)) Connection {
	return h.equationAdded.Connect(fn)
}

// OnEquationRemoving subscribes to equation removals; the equation is still
// valid during the emission.
func (h *Hub) OnEquationRemoving(fn func(*equation.Equation)) Connection {
	return h.equationRemoving.Connect(fn)
}

// OnEquationUpdated subscribes to equation field changes.
func (h *Hub) OnEquationUpdated(fn func(EquationChange)) Connection {
	return h.equationUpdated.Connect(fn)
}

// OnGroupAdded subscribes to group registrations.
func (h *Hub) OnGroupAdded(fn func(*equation.Group)) Connection {
	return h.groupAdded.Connect(fn)
}

// OnGroupRemoving subscribes to group removals; the group is still valid
// during the emission.
func (h *Hub) OnGroupRemoving(fn func(*equation.Group)) Connection {
	return h.groupRemoving.Connect(fn)
}

// OnGroupUpdated subscribes to group field changes.
func (h *Hub) OnGroupUpdated(fn func(GroupChange)) Connection {
	return h.groupUpdated.Connect(fn)
}

// EmitEquationAdded fires the equation-added signal.
func (h *Hub) EmitEquationAdded(eq *equation.Equation) {
	h.equationAdded.Emit(eq)
}

// EmitEquationRemoving fires the equation-removing signal.
func (h *Hub) EmitEquationRemoving(eq *equation.Equation) {
	h.equationRemoving.Emit(eq)
}

// EmitEquationUpdated fires the equation-updated signal.
func (h *Hub) EmitEquationUpdated(eq *equation.Equation, mask equation.FieldMask) {
	h.equationUpdated.Emit(EquationChange{Equation: eq, Mask: mask})
}

// EmitGroupAdded fires the group-added signal.
func (h *Hub) EmitGroupAdded(g *equation.Group) {
	h.groupAdded.Emit(g)
}

// EmitGroupRemoving fires the group-removing signal.
func (h *Hub) EmitGroupRemoving(g *equation.Group) {
	h.groupRemoving.Emit(g)
}

// EmitGroupUpdated fires the group-updated signal.
func (h *Hub) EmitGroupUpdated(g *equation.Group, mask equation.GroupFieldMask) {
	h.groupUpdated.Emit(GroupChange{Group: g, Mask: mask})
}

// DisconnectAll drops every subscription on every signal.
func (h *Hub) DisconnectAll() {
	h.equationAdded.DisconnectAll()
	h.equationRemoving.DisconnectAll()
	h.equationUpdated.DisconnectAll()
	h.groupAdded.DisconnectAll()
	h.groupRemoving.DisconnectAll()
	h.groupUpdated.DisconnectAll()
}
