package langtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/envstore"
	"github.com/recalchq/recalc/internal/lang"
)

func TestScriptParserStatements(t *testing.T) {
	p := &ScriptParser{}

	t.Run("single assignment", func(t *testing.T) {
		res := p.Parse("a = 1", lang.ParseStatement)
		require.True(t, res.OK(), res.Message)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "a", res.Items[0].Name)
		assert.Equal(t, "1", res.Items[0].Code)
		assert.Equal(t, lang.ItemVariable, res.Items[0].Type)
		assert.Empty(t, res.Items[0].Dependencies)
	})

	t.Run("multiple assignments", func(t *testing.T) {
		res := p.Parse("a = 1; b = a + 1", lang.ParseStatement)
		require.True(t, res.OK())
		require.Len(t, res.Items, 2)
		assert.Equal(t, "a", res.Items[0].Name)
		assert.Equal(t, "b", res.Items[1].Name)
		assert.Equal(t, []string{"a"}, res.Items[1].Dependencies)
	})

	t.Run("dependencies deduplicated in first reference order", func(t *testing.T) {
		res := p.Parse("total = b + a + b + a", lang.ParseStatement)
		require.True(t, res.OK())
		require.Len(t, res.Items, 1)
		assert.Equal(t, []string{"b", "a"}, res.Items[0].Dependencies)
	})

	t.Run("malformed statement", func(t *testing.T) {
		res := p.Parse("not an assignment", lang.ParseStatement)
		assert.Equal(t, lang.StatusSyntaxError, res.Status)
		assert.NotEmpty(t, res.Message)
		assert.Empty(t, res.Items)
	})

	t.Run("empty source", func(t *testing.T) {
		res := p.Parse("   ", lang.ParseStatement)
		assert.Equal(t, lang.StatusSyntaxError, res.Status)
	})
}

func TestScriptParserExpression(t *testing.T) {
	p := &ScriptParser{}

	res := p.Parse("x * y + 2", lang.ParseExpression)
	require.True(t, res.OK())
	require.Len(t, res.Items, 1)
	assert.Equal(t, lang.ExpressionItemName, res.Items[0].Name)
	assert.Equal(t, lang.ItemExpression, res.Items[0].Type)
	assert.Equal(t, "x * y + 2", res.Items[0].Code)
	assert.Equal(t, []string{"x", "y"}, res.Items[0].Dependencies)
}

func TestMathInterpreterEval(t *testing.T) {
	interp := &MathInterpreter{}
	env := envstore.New()
	env.Set("a", IntValue(6))
	env.Set("b", IntValue(4))

	cases := []struct {
		name string
		code string
		want int64
	}{
		{"addition", "a + b", 10},
		{"precedence", "a + b * 2", 14},
		{"parentheses", "(a + b) * 2", 20},
		{"unary minus", "-a + 1", -5},
		{"division", "a / 2", 3},
		{"literal only", "42", 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := interp.Interpret(context.Background(), tc.code, env, lang.ModeEval)
			require.True(t, res.OK(), res.Message)
			require.NotNil(t, res.Value)
			assert.Equal(t, tc.want, res.Value.(IntValue).Int())
		})
	}
}

func TestMathInterpreterErrors(t *testing.T) {
	interp := &MathInterpreter{}
	env := envstore.New()
	env.Set("a", IntValue(1))
	env.Set("s", stringValue("text"))

	cases := []struct {
		name string
		code string
		want lang.Status
	}{
		{"unknown name", "a + missing", lang.StatusNameError},
		{"non integer operand", "s + 1", lang.StatusTypeError},
		{"division by zero", "a / 0", lang.StatusZeroDivisionError},
		{"dangling operator", "a +", lang.StatusSyntaxError},
		{"unbalanced parenthesis", "(a + 1", lang.StatusSyntaxError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := interp.Interpret(context.Background(), tc.code, env, lang.ModeEval)
			assert.Equal(t, tc.want, res.Status)
			assert.NotEmpty(t, res.Message)
			assert.Nil(t, res.Value)
		})
	}
}

func TestMathInterpreterExec(t *testing.T) {
	interp := &MathInterpreter{}
	env := envstore.New()
	env.Set("a", IntValue(2))

	res := interp.Interpret(context.Background(), "b = a * 3; c = b + 1", env, lang.ModeExec)
	require.True(t, res.OK(), res.Message)

	b, ok := env.Get("b")
	require.True(t, ok)
	assert.Equal(t, int64(6), b.(IntValue).Int())
	c, ok := env.Get("c")
	require.True(t, ok)
	assert.Equal(t, int64(7), c.(IntValue).Int())
}

func TestMathInterpreterRecordsCalls(t *testing.T) {
	interp := &MathInterpreter{}
	env := envstore.New()

	interp.Interpret(context.Background(), "1 + 1", env, lang.ModeEval)
	interp.Interpret(context.Background(), "2 + 2", env, lang.ModeEval)

	assert.Equal(t, []string{"1 + 1", "2 + 2"}, interp.Calls())
	assert.Equal(t, 2, interp.CallCount())

	interp.Reset()
	assert.Empty(t, interp.Calls())
}

// stringValue is a minimal non-integer Value for type error cases.
type stringValue string

func (v stringValue) IsNull() bool          { return false }
func (v stringValue) TypeName() string      { return "string" }
func (v stringValue) String() string        { return string(v) }
func (v stringValue) Equal(o lang.Value) bool {
	s, ok := o.(stringValue)
	return ok && s == v
}
func (v stringValue) Compare(lang.Value) (int, error) { return 0, lang.ErrNotComparable }
