package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/lang"
	"github.com/recalchq/recalc/internal/testutil"
)

// Test for: runtime failures stay contained to their dependency subtree
func TestErrorHandling_RuntimeFailures_AreIsolated(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.eq": `ok = 10

bad = ok / 0

dependent = bad + 1
`,
	}

	// --- Act ---
	result := testutil.RunScripts(t, files, testutil.RunOptions{})

	// --- Assert ---
	require.NoError(t, result.Err, "app.Run() returned an unexpected error")

	// The healthy equation keeps its value.
	testutil.AssertEquationValue(t, result, "ok", "10")

	// The division failure is classified and its diagnostic preserved.
	testutil.AssertEquationFailed(t, result, "bad", lang.StatusZeroDivisionError, "division by zero")

	// The dependent still runs, but the failed name never reached the
	// environment, so it fails resolution rather than computing on stale data.
	testutil.AssertEquationFailed(t, result, "dependent", lang.StatusNameError, "undefined: bad")

	// Diagnostics surface in the results table too.
	require.Regexp(t, `(?m)^bad\s+ZeroDivisionError \(`, result.LogOutput)
}
