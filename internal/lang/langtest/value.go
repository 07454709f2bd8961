package langtest

import (
	"strconv"

	"github.com/recalchq/recalc/internal/lang"
)

// IntValue boxes an int64 for the test language.
type IntValue int64

// Int returns the boxed integer.
func (v IntValue) Int() int64 { return int64(v) }

// IsNull implements lang.Value; an IntValue is never null.
func (v IntValue) IsNull() bool { return false }

// TypeName implements lang.Value.
func (v IntValue) TypeName() string { return "int" }

// String implements lang.Value.
func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }

// Equal implements lang.Value.
func (v IntValue) Equal(other lang.Value) bool {
	o, ok := other.(IntValue)
	return ok && o == v
}

// Compare implements lang.Value; only IntValues are comparable.
func (v IntValue) Compare(other lang.Value) (int, error) {
	o, ok := other.(IntValue)
	if !ok {
		return 0, lang.ErrNotComparable
	}
	switch {
	case v < o:
		return -1, nil
	case v > o:
		return 1, nil
	default:
		return 0, nil
	}
}
