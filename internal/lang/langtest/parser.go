// Package langtest provides a minimal host language for tests: a parser for
// "name = expression" scripts and an integer arithmetic interpreter that
// records every call, so engine tests can assert which equations were
// actually re-evaluated.
package langtest

import (
	"fmt"
	"strings"

	"github.com/recalchq/recalc/internal/lang"
)

// ScriptParser parses statements of the form "a = 1; b = a + 2". Each
// semicolon-separated segment must be one "name = rhs" binding; identifiers
// on the right-hand side become dependencies.
type ScriptParser struct{}

// Parse implements lang.Parser.
func (ScriptParser) Parse(source string, mode lang.ParseMode) lang.ParseResult {
	if mode == lang.ParseExpression {
		return lang.ParseResult{
			Mode:   mode,
			Status: lang.StatusSuccess,
			Items: []lang.ParseItem{{
				Name:         lang.ExpressionItemName,
				Code:         strings.TrimSpace(source),
				Type:         lang.ItemExpression,
				Dependencies: identifiers(source),
			}},
		}
	}

	var items []lang.ParseItem
	for _, segment := range strings.Split(source, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, rhs, ok := strings.Cut(segment, "=")
		name = strings.TrimSpace(name)
		rhs = strings.TrimSpace(rhs)
		if !ok || !isIdentifier(name) || rhs == "" {
			return lang.ParseResult{
				Mode:    mode,
				Status:  lang.StatusSyntaxError,
				Message: fmt.Sprintf("expected \"name = expression\", got %q", segment),
			}
		}
		items = append(items, lang.ParseItem{
			Name:         name,
			Code:         rhs,
			Type:         lang.ItemVariable,
			Dependencies: identifiers(rhs),
		})
	}
	if len(items) == 0 {
		return lang.ParseResult{Mode: mode, Status: lang.StatusSyntaxError, Message: "empty statement"}
	}
	return lang.ParseResult{Mode: mode, Items: items, Status: lang.StatusSuccess}
}

// identifiers extracts the identifier tokens of src in first-reference
// order, deduplicated.
func identifiers(src string) []string {
	var (
		out  []string
		seen = map[string]struct{}{}
		cur  strings.Builder
	)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		name := cur.String()
		cur.Reset()
		if name[0] >= '0' && name[0] <= '9' {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, r := range src {
		if isIdentRune(r) {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
