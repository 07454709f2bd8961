// Package envstore holds the evaluated values of equations: a plain
// name-to-value map the interpreter consumes as its variable environment.
//
// The store is owned by the equation manager and follows its threading
// contract: all access happens on the goroutine driving the manager, so the
// store carries no lock. Interpreters receive it behind the lang.Env
// interface and must not retain it past the call.
package envstore

import (
	"sort"

	"github.com/recalchq/recalc/internal/lang"
)

// Store maps equation names to their current values.
type Store struct {
	values map[string]lang.Value
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]lang.Value)}
}

// Get returns the value bound to name.
func (s *Store) Get(name string) (lang.Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set binds name to value, replacing any previous binding.
func (s *Store) Set(name string, value lang.Value) {
	s.values[name] = value
}

// Remove deletes the binding for name and reports whether one existed.
func (s *Store) Remove(name string) bool {
	if _, ok := s.values[name]; !ok {
		return false
	}
	delete(s.values, name)
	return true
}

// Contains reports whether name is bound.
func (s *Store) Contains(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Keys returns the bound names in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of bindings.
func (s *Store) Len() int {
	return len(s.values)
}

// Clear removes every binding.
func (s *Store) Clear() {
	s.values = make(map[string]lang.Value)
}

var _ lang.Env = (*Store)(nil)
