package equation

import "strings"

// FieldMask is a bitset of equation fields changed by one update. Update
// signals carry it so observers can skip refreshes for fields they do not
// display.
type FieldMask uint

const (
	FieldContent FieldMask = 1 << iota
	FieldType
	FieldStatus
	FieldMessage
	FieldDependencies
	FieldValue
)

var fieldNames = []struct {
	bit  FieldMask
	name string
}{
	{FieldContent, "Content"},
	{FieldType, "Type"},
	{FieldStatus, "Status"},
	{FieldMessage, "Message"},
	{FieldDependencies, "Dependencies"},
	{FieldValue, "Value"},
}

// Has reports whether every bit of field is set.
func (m FieldMask) Has(field FieldMask) bool {
	return m&field == field
}

// String renders the set bits as "Content|Value"; "none" when empty.
func (m FieldMask) String() string {
	var parts []string
	for _, f := range fieldNames {
		if m.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// GroupFieldMask is the group-level analog of FieldMask.
type GroupFieldMask uint

const (
	GroupFieldStatement GroupFieldMask = 1 << iota
	GroupFieldEquationCount
)

// Has reports whether every bit of field is set.
func (m GroupFieldMask) Has(field GroupFieldMask) bool {
	return m&field == field
}

// String renders the set bits as "Statement|EquationCount"; "none" when empty.
func (m GroupFieldMask) String() string {
	var parts []string
	if m.Has(GroupFieldStatement) {
		parts = append(parts, "Statement")
	}
	if m.Has(GroupFieldEquationCount) {
		parts = append(parts, "EquationCount")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
