package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/recalchq/recalc/internal/depgraph"
	"github.com/recalchq/recalc/internal/envstore"
	"github.com/recalchq/recalc/internal/equation"
	"github.com/recalchq/recalc/internal/lang"
	"github.com/recalchq/recalc/internal/signals"
)

// Manager coordinates equation groups, the dependency graph, the value
// context, and change signals.
type Manager struct {
	logger *slog.Logger
	parser lang.Parser
	interp lang.Interpreter

	graph *depgraph.Graph
	env   *envstore.Store
	hub   *signals.Hub

	groups     map[uuid.UUID]*equation.Group
	groupOrder []uuid.UUID
	owner      map[string]uuid.UUID
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New returns a Manager with an empty graph and context.
func New(parser lang.Parser, interp lang.Interpreter, opts ...Option) *Manager {
	m := &Manager{
		logger: slog.Default(),
		parser: parser,
		interp: interp,
		graph:  depgraph.New(),
		env:    envstore.New(),
		hub:    signals.NewHub(),
		groups: make(map[uuid.UUID]*equation.Group),
		owner:  make(map[string]uuid.UUID),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Signals returns the signal hub observers subscribe to.
func (m *Manager) Signals() *signals.Hub {
	return m.hub
}

// Env returns the value context.
func (m *Manager) Env() *envstore.Store {
	return m.env
}

// Graph returns the dependency graph.
func (m *Manager) Graph() *depgraph.Graph {
	return m.graph
}

// Equation returns the equation registered under name.
func (m *Manager) Equation(name string) (*equation.Equation, bool) {
	eq := m.findEquation(name)
	return eq, eq != nil
}

// HasEquation reports whether name is registered.
func (m *Manager) HasEquation(name string) bool {
	_, ok := m.owner[name]
	return ok
}

// GroupOf returns the id of the group owning name.
func (m *Manager) GroupOf(name string) (uuid.UUID, bool) {
	id, ok := m.owner[name]
	return id, ok
}

// Group returns the group with the given id.
func (m *Manager) Group(id uuid.UUID) (*equation.Group, bool) {
	g, ok := m.groups[id]
	return g, ok
}

// Groups returns every group in insertion order.
func (m *Manager) Groups() []*equation.Group {
	out := make([]*equation.Group, 0, len(m.groupOrder))
	for _, id := range m.groupOrder {
		out = append(out, m.groups[id])
	}
	return out
}

func (m *Manager) findEquation(name string) *equation.Equation {
	id, ok := m.owner[name]
	if !ok {
		return nil
	}
	group, ok := m.groups[id]
	if !ok {
		return nil
	}
	eq, _ := group.Get(name)
	return eq
}
