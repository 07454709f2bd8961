// Package starlang implements the lang contracts with Starlark, the
// Python-flavored configuration language. Statements are restricted to the
// forms the equation engine can name: simple assignments, function
// definitions, and load statements. Everything else is rejected at parse
// time.
package starlang

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.starlark.net/syntax"

	"github.com/recalchq/recalc/internal/lang"
)

const sourceName = "recalc.star"

// fileOptions enables the set type and makes load() create module-level
// bindings, so imported names reach the environment when a load statement
// executes.
var fileOptions = &syntax.FileOptions{
	Set:               true,
	LoadBindsGlobally: true,
}

// Parser extracts named items from Starlark sources.
type Parser struct{}

// NewParser returns a ready Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements lang.Parser.
func (p *Parser) Parse(source string, mode lang.ParseMode) lang.ParseResult {
	if mode == lang.ParseExpression {
		return p.parseExpression(source)
	}
	return p.parseStatement(source)
}

func (p *Parser) parseExpression(source string) lang.ParseResult {
	expr, err := fileOptions.ParseExpr(sourceName, source, 0)
	if err != nil {
		return lang.ParseResult{
			Mode:    lang.ParseExpression,
			Status:  lang.StatusSyntaxError,
			Message: err.Error(),
		}
	}
	return lang.ParseResult{
		Mode:   lang.ParseExpression,
		Status: lang.StatusSuccess,
		Items: []lang.ParseItem{{
			Name:         lang.ExpressionItemName,
			Code:         source,
			Type:         lang.ItemExpression,
			Dependencies: freeIdents(expr),
		}},
	}
}

func (p *Parser) parseStatement(source string) lang.ParseResult {
	file, err := fileOptions.Parse(sourceName, source, 0)
	if err != nil {
		return lang.ParseResult{
			Mode:    lang.ParseStatement,
			Status:  lang.StatusSyntaxError,
			Message: err.Error(),
		}
	}
	if len(file.Stmts) == 0 {
		return lang.ParseResult{
			Mode:    lang.ParseStatement,
			Status:  lang.StatusSyntaxError,
			Message: "empty statement",
		}
	}

	index := newSourceIndex(source)
	var items []lang.ParseItem
	for _, stmt := range file.Stmts {
		switch s := stmt.(type) {
		case *syntax.AssignStmt:
			if s.Op != syntax.EQ {
				return statementFailure(stmt, "augmented assignment is not allowed")
			}
			ident, ok := s.LHS.(*syntax.Ident)
			if !ok {
				return statementFailure(stmt, "assignment target must be a single name")
			}
			items = append(items, lang.ParseItem{
				Name:         ident.Name,
				Code:         index.slice(s.RHS),
				Type:         lang.ItemVariable,
				Dependencies: freeIdents(s.RHS),
			})
		case *syntax.DefStmt:
			items = append(items, lang.ParseItem{
				Name: s.Name.Name,
				Code: index.slice(s),
				Type: lang.ItemFunction,
			})
		case *syntax.LoadStmt:
			code := index.slice(s)
			for _, to := range s.To {
				items = append(items, lang.ParseItem{
					Name: to.Name,
					Code: code,
					Type: lang.ItemImportFrom,
				})
			}
		default:
			return statementFailure(stmt,
				"only assignments, function definitions, and load statements are allowed")
		}
	}
	return lang.ParseResult{Mode: lang.ParseStatement, Status: lang.StatusSuccess, Items: items}
}

func statementFailure(stmt syntax.Stmt, reason string) lang.ParseResult {
	start, _ := stmt.Span()
	return lang.ParseResult{
		Mode:    lang.ParseStatement,
		Status:  lang.StatusSyntaxError,
		Message: fmt.Sprintf("%s (line %d)", reason, start.Line),
	}
}

// sourceIndex converts the line/column positions of the Starlark AST into
// byte offsets so node source text can be sliced back out.
type sourceIndex struct {
	src   string
	lines []int
}

func newSourceIndex(src string) *sourceIndex {
	lines := []int{0}
	for i, r := range src {
		if r == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &sourceIndex{src: src, lines: lines}
}

// offset returns the byte offset of p. Columns count runes, 1-based.
func (x *sourceIndex) offset(p syntax.Position) int {
	if p.Line < 1 || int(p.Line) > len(x.lines) {
		return len(x.src)
	}
	off := x.lines[p.Line-1]
	for col := int32(1); col < p.Col && off < len(x.src); col++ {
		_, size := utf8.DecodeRuneInString(x.src[off:])
		off += size
	}
	return off
}

// slice returns the source text spanned by n.
func (x *sourceIndex) slice(n syntax.Node) string {
	start, end := n.Span()
	from, to := x.offset(start), x.offset(end)
	if from > to || to > len(x.src) {
		return ""
	}
	return strings.TrimSpace(x.src[from:to])
}
