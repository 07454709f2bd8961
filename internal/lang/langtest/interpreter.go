package langtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/recalchq/recalc/internal/lang"
)

// MathInterpreter evaluates integer arithmetic over + - * / with
// parentheses, unary minus, and variables resolved from the environment. It
// records every interpreted code string so tests can verify exactly which
// equations the engine re-evaluated.
type MathInterpreter struct {
	// Delay, when non-zero, is slept before each interpretation. Tests use
	// it to hold a background update long enough to cancel it.
	Delay time.Duration

	mu    sync.Mutex
	calls []string
}

// Interpret implements lang.Interpreter. Eval mode evaluates one expression;
// exec mode runs "name = expression" segments separated by semicolons,
// writing each result into the environment.
func (m *MathInterpreter) Interpret(ctx context.Context, code string, env lang.Env, mode lang.InterpretMode) lang.InterpretResult {
	m.mu.Lock()
	m.calls = append(m.calls, code)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
		}
	}

	if mode == lang.ModeEval {
		value, err := evalExpression(code, env)
		if err != nil {
			return failure(mode, err)
		}
		return lang.InterpretResult{Mode: mode, Status: lang.StatusSuccess, Value: value}
	}

	for _, segment := range strings.Split(code, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, rhs, ok := strings.Cut(segment, "=")
		name = strings.TrimSpace(name)
		if !ok || !isIdentifier(name) {
			return failure(mode, &evalError{lang.StatusSyntaxError, fmt.Sprintf("not an assignment: %q", segment)})
		}
		value, err := evalExpression(strings.TrimSpace(rhs), env)
		if err != nil {
			return failure(mode, err)
		}
		env.Set(name, value)
	}
	return lang.InterpretResult{Mode: mode, Status: lang.StatusSuccess}
}

// Calls returns a copy of every code string interpreted so far.
func (m *MathInterpreter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Interpret invocations.
func (m *MathInterpreter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears the recorded calls.
func (m *MathInterpreter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

type evalError struct {
	status  lang.Status
	message string
}

func (e *evalError) Error() string { return e.message }

func failure(mode lang.InterpretMode, err error) lang.InterpretResult {
	status := lang.StatusValueError
	message := err.Error()
	if ee, ok := err.(*evalError); ok {
		status = ee.status
	}
	return lang.InterpretResult{Mode: mode, Status: status, Message: message}
}

// evalExpression is a recursive-descent evaluator over the token stream of
// src.
func evalExpression(src string, env lang.Env) (lang.Value, error) {
	p := &exprParser{tokens: tokenize(src), env: env}
	value, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, &evalError{lang.StatusSyntaxError, fmt.Sprintf("unexpected %q", p.tokens[p.pos])}
	}
	return IntValue(value), nil
}

type exprParser struct {
	tokens []string
	pos    int
	env    lang.Env
}

func (p *exprParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *exprParser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *exprParser) parseSum() (int64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case "+":
			p.next()
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left += right
		case "-":
			p.next()
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseProduct() (int64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case "*":
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case "/":
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, &evalError{lang.StatusZeroDivisionError, "division by zero"}
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseFactor() (int64, error) {
	tok := p.next()
	switch {
	case tok == "":
		return 0, &evalError{lang.StatusSyntaxError, "unexpected end of expression"}
	case tok == "(":
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.next() != ")" {
			return 0, &evalError{lang.StatusSyntaxError, "missing closing parenthesis"}
		}
		return value, nil
	case tok == "-":
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case tok[0] >= '0' && tok[0] <= '9':
		var n int64
		for _, r := range tok {
			if r < '0' || r > '9' {
				return 0, &evalError{lang.StatusSyntaxError, fmt.Sprintf("bad number %q", tok)}
			}
			n = n*10 + int64(r-'0')
		}
		return n, nil
	case isIdentifier(tok):
		value, ok := p.env.Get(tok)
		if !ok {
			return 0, &evalError{lang.StatusNameError, fmt.Sprintf("name %q is not defined", tok)}
		}
		iv, ok := value.(IntValue)
		if !ok {
			return 0, &evalError{lang.StatusTypeError, fmt.Sprintf("%q is not an int", tok)}
		}
		return iv.Int(), nil
	default:
		return 0, &evalError{lang.StatusSyntaxError, fmt.Sprintf("unexpected %q", tok)}
	}
}

// tokenize splits src into numbers, identifiers, and single-rune operators.
func tokenize(src string) []string {
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case isIdentRune(r):
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}
