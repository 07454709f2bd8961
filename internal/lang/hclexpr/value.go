package hclexpr

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/recalchq/recalc/internal/lang"
)

// Value boxes a cty value behind the lang.Value interface.
type Value struct {
	v cty.Value
}

// NewValue wraps v.
func NewValue(v cty.Value) *Value {
	return &Value{v: v}
}

// Cty returns the underlying cty value.
func (v *Value) Cty() cty.Value {
	return v.v
}

// IsNull reports whether the value is cty null.
func (v *Value) IsNull() bool {
	return v.v.IsNull()
}

// TypeName returns the cty type's friendly name, e.g. "number" or
// "list of string".
func (v *Value) TypeName() string {
	return v.v.Type().FriendlyName()
}

// String renders the value as JSON, so numbers display bare and strings
// quoted. Values JSON cannot express fall back to the cty syntax rendering.
func (v *Value) String() string {
	if v.v.IsNull() {
		return "null"
	}
	if b, err := ctyjson.Marshal(v.v, v.v.Type()); err == nil {
		return string(b)
	}
	return v.v.GoString()
}

// Equal implements deep equality over the raw cty values. Values from a
// different host language are never equal.
func (v *Value) Equal(other lang.Value) bool {
	o, ok := other.(*Value)
	if !ok {
		return false
	}
	return v.v.RawEquals(o.v)
}

// Compare orders two numbers or two strings. Everything else is not
// comparable.
func (v *Value) Compare(other lang.Value) (int, error) {
	o, ok := other.(*Value)
	if !ok || v.v.IsNull() || o.v.IsNull() {
		return 0, lang.ErrNotComparable
	}
	switch {
	case v.v.Type() == cty.Number && o.v.Type() == cty.Number:
		return v.v.AsBigFloat().Cmp(o.v.AsBigFloat()), nil
	case v.v.Type() == cty.String && o.v.Type() == cty.String:
		return strings.Compare(v.v.AsString(), o.v.AsString()), nil
	default:
		return 0, lang.ErrNotComparable
	}
}

var _ lang.Value = (*Value)(nil)
