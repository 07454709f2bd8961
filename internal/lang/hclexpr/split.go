package hclexpr

import "strings"

// splitStatements cuts source into one segment per binding, splitting on
// semicolons and newlines. Separators inside string literals or inside
// parentheses, brackets, and braces do not split, so multi-line calls and
// strings containing ";" survive intact. Blank segments are dropped.
func splitStatements(source string) []string {
	var (
		segments []string
		current  strings.Builder
		depth    int
		inString bool
		escaped  bool
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
	}
	for _, r := range source {
		if inString {
			current.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			current.WriteRune(r)
		case '(', '[', '{':
			depth++
			current.WriteRune(r)
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case ';', '\n':
			if depth > 0 {
				current.WriteRune(r)
			} else {
				flush()
			}
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return segments
}
