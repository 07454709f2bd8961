package starlang

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/recalchq/recalc/internal/lang"
)

// Value boxes a Starlark value behind the lang.Value interface.
type Value struct {
	v starlark.Value
}

// NewValue wraps v. A nil value is stored as None.
func NewValue(v starlark.Value) *Value {
	if v == nil {
		v = starlark.None
	}
	return &Value{v: v}
}

// Starlark returns the underlying Starlark value.
func (v *Value) Starlark() starlark.Value {
	return v.v
}

// IsNull reports whether the value is None.
func (v *Value) IsNull() bool {
	return v.v == starlark.None
}

// TypeName returns the Starlark type name, e.g. "int" or "list".
func (v *Value) TypeName() string {
	return v.v.Type()
}

// String renders the value in Starlark notation: numbers bare, strings
// quoted.
func (v *Value) String() string {
	return v.v.String()
}

// Equal implements deep equality. Values from a different host language are
// never equal, and incomparably deep structures count as unequal.
func (v *Value) Equal(other lang.Value) bool {
	o, ok := other.(*Value)
	if !ok {
		return false
	}
	eq, err := starlark.Equal(v.v, o.v)
	return err == nil && eq
}

// Compare orders two values with Starlark's comparison rules.
func (v *Value) Compare(other lang.Value) (int, error) {
	o, ok := other.(*Value)
	if !ok {
		return 0, lang.ErrNotComparable
	}
	if eq, err := starlark.Equal(v.v, o.v); err == nil && eq {
		return 0, nil
	}
	less, err := starlark.Compare(syntax.LT, v.v, o.v)
	if err != nil {
		return 0, lang.ErrNotComparable
	}
	if less {
		return -1, nil
	}
	return 1, nil
}

var _ lang.Value = (*Value)(nil)
