package depgraph

import "strings"

// CycleError reports that a batch of mutations would make the graph cyclic.
// Path holds the offending cycle: it starts and ends with the same name and
// has length >= 2 (a self-dependency yields [a a]).
type CycleError struct {
	Path []string
}

// Error renders the cycle as "dependency cycle detected: c -> a -> b -> c".
func (e *CycleError) Error() string {
	var b strings.Builder
	b.WriteString("dependency cycle detected: ")
	for i, name := range e.Path {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(name)
	}
	return b.String()
}
