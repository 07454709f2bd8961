package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/lang"
)

// AssertEquationValue checks that the named equation evaluated successfully
// and its stored value renders as want. It goes through the engine rather
// than the printed table, making tests resilient to output formatting.
func AssertEquationValue(t *testing.T, result *HarnessResult, name, want string) {
	t.Helper()
	require.NotNil(t, result.App, "harness did not produce an app")

	engine := result.App.Engine()
	eq, ok := engine.Equation(name)
	require.True(t, ok, "equation %q was not registered", name)
	require.Equal(t, lang.StatusSuccess, eq.Status(),
		"equation %q finished with status %s (%s)", name, eq.Status(), eq.Message())

	value, ok := engine.Env().Get(name)
	require.True(t, ok, "equation %q has no stored value", name)
	require.Equal(t, want, value.String(), "equation %q value mismatch", name)
}

// AssertEquationFailed checks that the named equation ended in the given
// failure status and that its diagnostic contains messagePart.
func AssertEquationFailed(t *testing.T, result *HarnessResult, name string, status lang.Status, messagePart string) {
	t.Helper()
	require.NotNil(t, result.App, "harness did not produce an app")

	eq, ok := result.App.Engine().Equation(name)
	require.True(t, ok, "equation %q was not registered", name)
	require.Equal(t, status, eq.Status(),
		"equation %q finished with status %s (%s)", name, eq.Status(), eq.Message())
	require.Contains(t, eq.Message(), messagePart, "equation %q diagnostic mismatch", name)

	_, ok = result.App.Engine().Env().Get(name)
	require.False(t, ok, "failed equation %q should not keep a stored value", name)
}
