package engine

import "fmt"

// ParseError reports that a statement could not be parsed. The message comes
// from the language adapter.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing statement: %s", e.Message)
}

// DuplicateNameError reports an attempt to register an equation under a name
// that is already taken, either by another group or twice within the same
// statement.
type DuplicateNameError struct {
	Name    string
	Content string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("equation %q already exists", e.Name)
}

// NotFoundError reports a lookup of an unknown equation or group.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}
