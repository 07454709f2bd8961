package equation

import "github.com/google/uuid"

// Group is the user-visible unit created from one textual statement. A
// statement may expand into several equations ("a=1;b=2"); the group keeps
// them in insertion order under their names.
type Group struct {
	id        uuid.UUID
	statement string
	order     []string
	equations map[string]*Equation
}

// NewGroup creates an empty group for the given statement.
func NewGroup(id uuid.UUID, statement string) *Group {
	return &Group{
		id:        id,
		statement: statement,
		equations: make(map[string]*Equation),
	}
}

// ID returns the group's stable identifier.
func (g *Group) ID() uuid.UUID { return g.id }

// Statement returns the original textual source of the group.
func (g *Group) Statement() string { return g.statement }

// SetStatement replaces the source text and reports whether it changed.
func (g *Group) SetStatement(statement string) bool {
	if g.statement == statement {
		return false
	}
	g.statement = statement
	return true
}

// Len returns the number of equations in the group.
func (g *Group) Len() int { return len(g.order) }

// Names returns a copy of the equation names in insertion order.
func (g *Group) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Get returns the equation with the given name.
func (g *Group) Get(name string) (*Equation, bool) {
	eq, ok := g.equations[name]
	return eq, ok
}

// Has reports whether the group owns an equation with the given name.
func (g *Group) Has(name string) bool {
	_, ok := g.equations[name]
	return ok
}

// Equations returns the equations in insertion order.
func (g *Group) Equations() []*Equation {
	out := make([]*Equation, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.equations[name])
	}
	return out
}

// Add appends the equation; if the name already exists the equation is
// replaced in place, keeping its original position.
func (g *Group) Add(eq *Equation) {
	if _, ok := g.equations[eq.Name()]; !ok {
		g.order = append(g.order, eq.Name())
	}
	g.equations[eq.Name()] = eq
}

// Remove deletes the named equation and reports whether it existed.
func (g *Group) Remove(name string) bool {
	if _, ok := g.equations[name]; !ok {
		return false
	}
	delete(g.equations, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}
