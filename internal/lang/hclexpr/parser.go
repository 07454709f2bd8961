// Package hclexpr implements the lang contracts on top of HCL expression
// syntax. A statement is a sequence of "name = expression" bindings separated
// by semicolons or newlines; an expression is any HCL expression. Values are
// cty values and the evaluation context exposes a fixed table of cty stdlib
// functions.
package hclexpr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/recalchq/recalc/internal/lang"
)

const sourceName = "recalc.hcl"

// Parser extracts named items from HCL sources.
type Parser struct{}

// NewParser returns a ready Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements lang.Parser. Statement mode requires every segment to be a
// single attribute binding; any bare expression, block, or syntax error fails
// the whole parse.
func (p *Parser) Parse(source string, mode lang.ParseMode) lang.ParseResult {
	if mode == lang.ParseExpression {
		return p.parseExpression(source)
	}
	return p.parseStatement(source)
}

func (p *Parser) parseExpression(source string) lang.ParseResult {
	expr, diags := hclsyntax.ParseExpression([]byte(source), sourceName, hcl.InitialPos)
	if diags.HasErrors() {
		return syntaxFailure(lang.ParseExpression, diags)
	}
	return lang.ParseResult{
		Mode:   lang.ParseExpression,
		Status: lang.StatusSuccess,
		Items: []lang.ParseItem{{
			Name:         lang.ExpressionItemName,
			Code:         source,
			Type:         lang.ItemExpression,
			Dependencies: rootNames(expr.Variables()),
		}},
	}
}

func (p *Parser) parseStatement(source string) lang.ParseResult {
	segments := splitStatements(source)
	if len(segments) == 0 {
		return lang.ParseResult{
			Mode:    lang.ParseStatement,
			Status:  lang.StatusSyntaxError,
			Message: "empty statement",
		}
	}

	items := make([]lang.ParseItem, 0, len(segments))
	for _, segment := range segments {
		name, expr, diags := parseBinding(segment)
		if diags.HasErrors() {
			return syntaxFailure(lang.ParseStatement, diags)
		}
		if expr == nil {
			return lang.ParseResult{
				Mode:    lang.ParseStatement,
				Status:  lang.StatusSyntaxError,
				Message: fmt.Sprintf(`expected a single "name = expression" binding, got %q`, segment),
			}
		}
		rng := expr.Range()
		items = append(items, lang.ParseItem{
			Name:         name,
			Code:         segment[rng.Start.Byte:rng.End.Byte],
			Type:         lang.ItemVariable,
			Dependencies: rootNames(expr.Variables()),
		})
	}
	return lang.ParseResult{Mode: lang.ParseStatement, Status: lang.StatusSuccess, Items: items}
}

// parseBinding parses one segment and returns its sole attribute. A nil
// expression with clean diagnostics means the segment parsed but was not a
// single binding.
func parseBinding(segment string) (string, hclsyntax.Expression, hcl.Diagnostics) {
	file, diags := hclsyntax.ParseConfig([]byte(segment), sourceName, hcl.InitialPos)
	if diags.HasErrors() {
		return "", nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok || len(body.Blocks) > 0 || len(body.Attributes) != 1 {
		return "", nil, nil
	}
	for name, attr := range body.Attributes {
		return name, attr.Expr, nil
	}
	return "", nil, nil
}

// rootNames reduces traversals to their root identifiers, deduplicated in
// first-seen order.
func rootNames(traversals []hcl.Traversal) []string {
	var names []string
	seen := make(map[string]struct{}, len(traversals))
	for _, t := range traversals {
		root := t.RootName()
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		names = append(names, root)
	}
	return names
}

func syntaxFailure(mode lang.ParseMode, diags hcl.Diagnostics) lang.ParseResult {
	return lang.ParseResult{
		Mode:    mode,
		Status:  lang.StatusSyntaxError,
		Message: diagMessage(diags),
	}
}
