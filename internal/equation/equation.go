// Package equation holds the entities of the engine: a single named equation
// and the group that owns a set of them. Both are plain data holders mutated
// only by the equation manager; everything else receives read-only views.
package equation

import (
	"github.com/google/uuid"

	"github.com/recalchq/recalc/internal/lang"
)

// Type classifies what kind of declaration an equation came from.
type Type int

const (
	// TypeVariable is a plain "name = expression" binding.
	TypeVariable Type = iota
	// TypeFunction is a function definition.
	TypeFunction
	// TypeClass is a class definition.
	TypeClass
	// TypeImport is a whole-module import.
	TypeImport
	// TypeImportFrom binds selected names out of a module.
	TypeImportFrom
	// TypeError marks an item the parser could not classify.
	TypeError
)

var typeNames = map[Type]string{
	TypeVariable:   "Variable",
	TypeFunction:   "Function",
	TypeClass:      "Class",
	TypeImport:     "Import",
	TypeImportFrom: "ImportFrom",
	TypeError:      "Error",
}

// String returns the canonical type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Error"
}

// TypeFromItem maps a parser item type onto the equation taxonomy. Item types
// the engine cannot register (unknown ones) map to TypeError; an expression
// item is a variable for the engine's purposes.
func TypeFromItem(t lang.ItemType) Type {
	switch t {
	case lang.ItemVariable, lang.ItemExpression:
		return TypeVariable
	case lang.ItemFunction:
		return TypeFunction
	case lang.ItemClass:
		return TypeClass
	case lang.ItemImport:
		return TypeImport
	case lang.ItemImportFrom:
		return TypeImportFrom
	default:
		return TypeError
	}
}

// Equation is one named declaration. The manager is the only writer; the
// compare-and-set mutators report whether the field actually changed so the
// caller can accumulate a FieldMask for its update signal.
type Equation struct {
	name         string
	content      string
	typ          Type
	status       lang.Status
	message      string
	dependencies []string
	groupID      uuid.UUID
}

// New creates an equation in status Init.
func New(name, content string, typ Type, dependencies []string, groupID uuid.UUID) *Equation {
	return &Equation{
		name:         name,
		content:      content,
		typ:          typ,
		status:       lang.StatusInit,
		dependencies: dedup(dependencies),
		groupID:      groupID,
	}
}

// Name returns the equation's unique name.
func (e *Equation) Name() string { return e.name }

// Content returns the code fragment the interpreter runs: the right-hand
// side for variables, the full statement for function and import forms.
func (e *Equation) Content() string { return e.content }

// Type returns the declaration kind.
func (e *Equation) Type() Type { return e.typ }

// Status returns the most recent parse/evaluation status.
func (e *Equation) Status() lang.Status { return e.status }

// Message returns the diagnostic for the current status; empty on success.
func (e *Equation) Message() string { return e.message }

// GroupID returns the id of the owning group.
func (e *Equation) GroupID() uuid.UUID { return e.groupID }

// Dependencies returns a copy of the names the equation references, in
// first-reference order.
func (e *Equation) Dependencies() []string {
	out := make([]string, len(e.dependencies))
	copy(out, e.dependencies)
	return out
}

// SetContent replaces the code fragment and reports whether it changed.
func (e *Equation) SetContent(content string) bool {
	if e.content == content {
		return false
	}
	e.content = content
	return true
}

// SetType replaces the declaration kind and reports whether it changed.
func (e *Equation) SetType(typ Type) bool {
	if e.typ == typ {
		return false
	}
	e.typ = typ
	return true
}

// SetStatus replaces the status and reports whether it changed.
func (e *Equation) SetStatus(status lang.Status) bool {
	if e.status == status {
		return false
	}
	e.status = status
	return true
}

// SetMessage replaces the diagnostic and reports whether it changed.
func (e *Equation) SetMessage(message string) bool {
	if e.message == message {
		return false
	}
	e.message = message
	return true
}

// SetDependencies replaces the dependency list (deduplicated, order kept)
// and reports whether it changed.
func (e *Equation) SetDependencies(dependencies []string) bool {
	next := dedup(dependencies)
	if equalStrings(e.dependencies, next) {
		return false
	}
	e.dependencies = next
	return true
}

func dedup(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func equalStrings(a, b []string) bool {
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
