package hclexpr

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/recalchq/recalc/internal/lang"
)

// Interpreter evaluates HCL expressions against the equation environment.
// The function table is fixed at construction and shared by every call.
type Interpreter struct {
	funcs map[string]function.Function
}

// NewInterpreter returns an Interpreter with the standard function table.
func NewInterpreter() *Interpreter {
	return &Interpreter{funcs: builtinFunctions()}
}

// Interpret implements lang.Interpreter. Eval mode evaluates code as one
// expression; exec mode evaluates each "name = expression" segment in order,
// writing every result into the environment before the next segment runs.
func (i *Interpreter) Interpret(ctx context.Context, code string, env lang.Env, mode lang.InterpretMode) lang.InterpretResult {
	evalCtx := i.buildEvalContext(env)

	if mode == lang.ModeEval {
		expr, diags := hclsyntax.ParseExpression([]byte(code), sourceName, hcl.InitialPos)
		if diags.HasErrors() {
			return interpretFailure(mode, lang.StatusSyntaxError, diags)
		}
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return interpretFailure(mode, classify(diags), diags)
		}
		return lang.InterpretResult{Mode: mode, Status: lang.StatusSuccess, Value: NewValue(val)}
	}

	for _, segment := range splitStatements(code) {
		if err := ctx.Err(); err != nil {
			return lang.InterpretResult{
				Mode:    mode,
				Status:  lang.StatusValueError,
				Message: fmt.Sprintf("execution cancelled: %s", err),
			}
		}
		name, expr, diags := parseBinding(segment)
		if diags.HasErrors() {
			return interpretFailure(mode, lang.StatusSyntaxError, diags)
		}
		if expr == nil {
			return lang.InterpretResult{
				Mode:    mode,
				Status:  lang.StatusSyntaxError,
				Message: fmt.Sprintf(`expected a single "name = expression" binding, got %q`, segment),
			}
		}
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return interpretFailure(mode, classify(diags), diags)
		}
		env.Set(name, NewValue(val))
		evalCtx.Variables[name] = val
	}
	return lang.InterpretResult{Mode: mode, Status: lang.StatusSuccess}
}

// buildEvalContext snapshots the environment into cty variables. Values from
// a different host language are skipped; referencing one reads as an unknown
// variable.
func (i *Interpreter) buildEvalContext(env lang.Env) *hcl.EvalContext {
	vars := make(map[string]cty.Value, env.Len())
	for _, name := range env.Keys() {
		if value, ok := env.Get(name); ok {
			if hv, ok := value.(*Value); ok {
				vars[name] = hv.Cty()
			}
		}
	}
	return &hcl.EvalContext{Variables: vars, Functions: i.funcs}
}

// builtinFunctions is the fixed cty stdlib table available to every
// expression.
func builtinFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"ceil":       stdlib.CeilFunc,
		"floor":      stdlib.FloorFunc,
		"int":        stdlib.IntFunc,
		"log":        stdlib.LogFunc,
		"max":        stdlib.MaxFunc,
		"min":        stdlib.MinFunc,
		"parseint":   stdlib.ParseIntFunc,
		"pow":        stdlib.PowFunc,
		"signum":     stdlib.SignumFunc,
		"chomp":      stdlib.ChompFunc,
		"format":     stdlib.FormatFunc,
		"formatlist": stdlib.FormatListFunc,
		"indent":     stdlib.IndentFunc,
		"join":       stdlib.JoinFunc,
		"lower":      stdlib.LowerFunc,
		"replace":    stdlib.ReplaceFunc,
		"split":      stdlib.SplitFunc,
		"strlen":     stdlib.StrlenFunc,
		"strrev":     stdlib.ReverseFunc,
		"substr":     stdlib.SubstrFunc,
		"title":      stdlib.TitleFunc,
		"trim":       stdlib.TrimFunc,
		"trimprefix": stdlib.TrimPrefixFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"trimsuffix": stdlib.TrimSuffixFunc,
		"upper":      stdlib.UpperFunc,
		"chunklist":  stdlib.ChunklistFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"compact":    stdlib.CompactFunc,
		"concat":     stdlib.ConcatFunc,
		"contains":   stdlib.ContainsFunc,
		"distinct":   stdlib.DistinctFunc,
		"element":    stdlib.ElementFunc,
		"flatten":    stdlib.FlattenFunc,
		"keys":       stdlib.KeysFunc,
		"length":     stdlib.LengthFunc,
		"lookup":     stdlib.LookupFunc,
		"merge":      stdlib.MergeFunc,
		"range":      stdlib.RangeFunc,
		"reverse":    stdlib.ReverseListFunc,
		"slice":      stdlib.SliceFunc,
		"sort":       stdlib.SortFunc,
		"values":     stdlib.ValuesFunc,
		"zipmap":     stdlib.ZipmapFunc,
		"csvdecode":  stdlib.CSVDecodeFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"formatdate": stdlib.FormatDateFunc,
		"timeadd":    stdlib.TimeAddFunc,
		"regex":      stdlib.RegexFunc,
		"regexall":   stdlib.RegexAllFunc,
		"tostring":   stdlib.MakeToFunc(cty.String),
		"tonumber":   stdlib.MakeToFunc(cty.Number),
		"tobool":     stdlib.MakeToFunc(cty.Bool),
	}
}

// classify maps evaluation diagnostics onto the status taxonomy. The first
// error-severity diagnostic decides.
func classify(diags hcl.Diagnostics) lang.Status {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		detail := strings.ToLower(d.Detail)
		if strings.Contains(detail, "zero") &&
			(strings.Contains(detail, "divide") || strings.Contains(detail, "modulo")) {
			return lang.StatusZeroDivisionError
		}
		switch d.Summary {
		case "Unknown variable", "Variables not allowed", "Unsupported attribute",
			"Call to unknown function", "Function calls not allowed":
			return lang.StatusNameError
		case "Invalid index":
			return lang.StatusIndexError
		case "Invalid operand", "Invalid function argument",
			"Invalid template interpolation value",
			"Attempt to get attribute from null value",
			"Incorrect condition type", "Inconsistent conditional result types":
			return lang.StatusTypeError
		default:
			return lang.StatusValueError
		}
	}
	return lang.StatusValueError
}

// diagMessage renders diagnostics as a single human-readable line.
func diagMessage(diags hcl.Diagnostics) string {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Detail == "" {
			return d.Summary
		}
		return fmt.Sprintf("%s: %s", d.Summary, strings.TrimSuffix(d.Detail, "."))
	}
	return diags.Error()
}

func interpretFailure(mode lang.InterpretMode, status lang.Status, diags hcl.Diagnostics) lang.InterpretResult {
	return lang.InterpretResult{Mode: mode, Status: status, Message: diagMessage(diags)}
}
