package starlang

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// freeIdents returns the free identifiers of expr in first-seen order,
// deduplicated, with universe builtins excluded. Attribute names, call
// keyword names, lambda parameters, and comprehension variables are not
// free.
func freeIdents(expr syntax.Expr) []string {
	c := &identCollector{seen: make(map[string]struct{})}
	c.walk(expr)
	return c.names
}

type identCollector struct {
	names []string
	seen  map[string]struct{}
	bound []map[string]struct{}
}

func (c *identCollector) add(name string) {
	for _, scope := range c.bound {
		if _, ok := scope[name]; ok {
			return
		}
	}
	if _, ok := starlark.Universe[name]; ok {
		return
	}
	if _, ok := c.seen[name]; ok {
		return
	}
	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
}

func (c *identCollector) walk(expr syntax.Expr) {
	switch e := expr.(type) {
	case nil:
	case *syntax.Ident:
		c.add(e.Name)
	case *syntax.Literal:
	case *syntax.ParenExpr:
		c.walk(e.X)
	case *syntax.UnaryExpr:
		c.walk(e.X)
	case *syntax.BinaryExpr:
		c.walk(e.X)
		c.walk(e.Y)
	case *syntax.CondExpr:
		c.walk(e.Cond)
		c.walk(e.True)
		c.walk(e.False)
	case *syntax.DotExpr:
		// Only the receiver can be free; the attribute name never is.
		c.walk(e.X)
	case *syntax.IndexExpr:
		c.walk(e.X)
		c.walk(e.Y)
	case *syntax.SliceExpr:
		c.walk(e.X)
		c.walk(e.Lo)
		c.walk(e.Hi)
		c.walk(e.Step)
	case *syntax.CallExpr:
		c.walk(e.Fn)
		for _, arg := range e.Args {
			// Keyword arguments bind the name on the left, so only the
			// value side is free.
			if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
				c.walk(kw.Y)
				continue
			}
			c.walk(arg)
		}
	case *syntax.ListExpr:
		for _, item := range e.List {
			c.walk(item)
		}
	case *syntax.TupleExpr:
		for _, item := range e.List {
			c.walk(item)
		}
	case *syntax.DictExpr:
		for _, entry := range e.List {
			if de, ok := entry.(*syntax.DictEntry); ok {
				c.walk(de.Key)
				c.walk(de.Value)
			}
		}
	case *syntax.LambdaExpr:
		scope := make(map[string]struct{})
		for _, param := range e.Params {
			switch p := param.(type) {
			case *syntax.Ident:
				scope[p.Name] = struct{}{}
			case *syntax.BinaryExpr:
				// Default values are evaluated in the enclosing scope.
				if id, ok := p.X.(*syntax.Ident); ok {
					scope[id.Name] = struct{}{}
				}
				c.walk(p.Y)
			case *syntax.UnaryExpr:
				// *args and **kwargs parameters.
				if id, ok := p.X.(*syntax.Ident); ok {
					scope[id.Name] = struct{}{}
				}
			}
		}
		c.bound = append(c.bound, scope)
		c.walk(e.Body)
		c.bound = c.bound[:len(c.bound)-1]
	case *syntax.Comprehension:
		scope := make(map[string]struct{})
		c.bound = append(c.bound, scope)
		for _, clause := range e.Clauses {
			switch cl := clause.(type) {
			case *syntax.ForClause:
				c.walk(cl.X)
				bindTargets(cl.Vars, scope)
			case *syntax.IfClause:
				c.walk(cl.Cond)
			}
		}
		c.walk(e.Body)
		c.bound = c.bound[:len(c.bound)-1]
	}
}

// bindTargets records every identifier bound by a for-clause target, which
// may be a single name or a (possibly nested) tuple or list of names.
func bindTargets(target syntax.Expr, scope map[string]struct{}) {
	switch t := target.(type) {
	case *syntax.Ident:
		scope[t.Name] = struct{}{}
	case *syntax.TupleExpr:
		for _, item := range t.List {
			bindTargets(item, scope)
		}
	case *syntax.ListExpr:
		for _, item := range t.List {
			bindTargets(item, scope)
		}
	case *syntax.ParenExpr:
		bindTargets(t.X, scope)
	}
}
