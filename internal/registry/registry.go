// Package registry maps language names to the adapter factories implementing
// them. The application populates it at startup and resolves the configured
// language through it; registering the same name twice is a wiring bug and
// panics.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/recalchq/recalc/internal/lang"
)

// Adapter bundles the factories of one host language. Factories are invoked
// once per application instance, so adapters may carry per-instance state
// such as caches.
type Adapter struct {
	// NewParser returns the language's statement and expression parser.
	NewParser func() lang.Parser
	// NewInterpreter returns the language's evaluator.
	NewInterpreter func() lang.Interpreter
}

// Registry holds the language adapters of a single application instance.
type Registry struct {
	adapters map[string]*Adapter
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{adapters: make(map[string]*Adapter)}
}

// Register adds an adapter under name.
func (r *Registry) Register(name string, adapter *Adapter) {
	if adapter == nil || adapter.NewParser == nil || adapter.NewInterpreter == nil {
		panic(fmt.Sprintf("language adapter %q is missing a factory", name))
	}
	if _, exists := r.adapters[name]; exists {
		panic(fmt.Sprintf("language adapter %q already registered", name))
	}
	slog.Debug("Registering language adapter.", "name", name)
	r.adapters[name] = adapter
}

// Lookup returns the adapter registered under name.
func (r *Registry) Lookup(name string) (*Adapter, bool) {
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names returns the registered language names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
