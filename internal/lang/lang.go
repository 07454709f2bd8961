// Package lang defines the contracts between the equation engine and a host
// language implementation: parsing statements into named items, interpreting
// code against a variable environment, and the opaque boxed value the two
// sides exchange. The engine never inspects value structure beyond the Value
// interface; concrete languages live in the subpackages hclexpr and starlang.
package lang

import (
	"context"
	"errors"
)

// ExpressionItemName is the reserved item name produced by expression-mode
// parses, which have no user-supplied left-hand side.
const ExpressionItemName = "__expression__"

// ErrNotComparable is returned by Value.Compare when the two values have no
// defined ordering.
var ErrNotComparable = errors.New("values are not comparable")

// ParseMode selects what a source string is expected to contain.
type ParseMode int

const (
	// ParseStatement parses one or more name-binding declarations.
	ParseStatement ParseMode = iota
	// ParseExpression parses a single anonymous expression.
	ParseExpression
)

// String returns the mode name used in logs and cache keys.
func (m ParseMode) String() string {
	switch m {
	case ParseStatement:
		return "statement"
	case ParseExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// InterpretMode selects how a code fragment is executed.
type InterpretMode int

const (
	// ModeExec runs statements for their side effects; produced names are
	// written into the environment by the interpreter itself.
	ModeExec InterpretMode = iota
	// ModeEval evaluates a single expression and returns its value.
	ModeEval
)

// String returns the mode name used in logs.
func (m InterpretMode) String() string {
	switch m {
	case ModeExec:
		return "exec"
	case ModeEval:
		return "eval"
	default:
		return "unknown"
	}
}

// Env is the variable environment an interpreter reads and, in exec mode,
// writes. The engine's context store implements it; interpreters must treat
// it as the single source of truth for name lookups.
type Env interface {
	Get(name string) (Value, bool)
	Set(name string, value Value)
	Remove(name string) bool
	Contains(name string) bool
	Keys() []string
	Len() int
}

// Value is a dynamically-typed boxed value. Equality must be total (two
// values of different types are unequal, never an error); ordering may fail
// for incomparable types.
type Value interface {
	// IsNull reports whether the value is the language's null/none.
	IsNull() bool
	// TypeName returns a human-readable type label.
	TypeName() string
	// String renders the value for display.
	String() string
	// Equal reports deep equality with another value.
	Equal(other Value) bool
	// Compare returns -1, 0, or +1, or an error when the values are not
	// comparable.
	Compare(other Value) (int, error)
}

// Parser turns source text into named items with their dependencies.
//
// In ParseStatement mode a successful result carries one or more items (a
// statement like "a=1;b=2" yields two). In ParseExpression mode it carries
// exactly one item named ExpressionItemName. Failures are reported through
// ParseResult.Status and Message, never by panicking.
type Parser interface {
	Parse(source string, mode ParseMode) ParseResult
}

// Interpreter executes code against an environment.
//
// Side effects on the environment are observable as soon as Interpret
// returns. Implementations should honor ctx cancellation at interpretation
// boundaries where the underlying runtime allows it.
type Interpreter interface {
	Interpret(ctx context.Context, code string, env Env, mode InterpretMode) InterpretResult
}
