package starlang

import (
	"errors"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/recalchq/recalc/internal/lang"
)

// classifyError maps a Starlark failure onto the status taxonomy. Runtime
// errors carry no structured kind, so classification matches the stable
// message fragments the interpreter emits.
func classifyError(err error) lang.Status {
	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		return lang.StatusSyntaxError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "undefined:"),
		strings.Contains(msg, "referenced before assignment"):
		return lang.StatusNameError
	case strings.Contains(msg, "division by zero"),
		strings.Contains(msg, "modulo by zero"):
		return lang.StatusZeroDivisionError
	case strings.Contains(msg, "called recursively"),
		strings.Contains(msg, "recursion"),
		strings.Contains(msg, "nesting depth"):
		return lang.StatusRecursionError
	case strings.Contains(msg, "out of range") && strings.Contains(msg, "index"):
		return lang.StatusIndexError
	case strings.Contains(msg, "not in dict"),
		strings.Contains(msg, "missing key"):
		return lang.StatusKeyError
	case strings.Contains(msg, "has no ."):
		return lang.StatusAttributeError
	case strings.Contains(msg, "unknown binary op"),
		strings.Contains(msg, "unknown unary op"),
		strings.Contains(msg, "not iterable"),
		strings.Contains(msg, "unhashable"),
		strings.Contains(msg, "not callable"),
		strings.Contains(msg, "got ") && strings.Contains(msg, "want "):
		return lang.StatusTypeError
	case strings.Contains(msg, "too large"),
		strings.Contains(msg, "overflow"):
		return lang.StatusOverflowError
	case strings.Contains(msg, "out of memory"):
		return lang.StatusMemoryError
	default:
		return lang.StatusValueError
	}
}

// errorMessage renders err for equation messages. Evaluation errors use only
// the message, not the multi-line backtrace.
func errorMessage(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Msg
	}
	return err.Error()
}
