package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/depgraph"
	"github.com/recalchq/recalc/internal/engine"
	"github.com/recalchq/recalc/internal/equation"
	"github.com/recalchq/recalc/internal/lang"
	"github.com/recalchq/recalc/internal/lang/langtest"
	"github.com/recalchq/recalc/internal/signals"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager() (*engine.Manager, *langtest.MathInterpreter) {
	interp := &langtest.MathInterpreter{}
	m := engine.New(langtest.ScriptParser{}, interp, engine.WithLogger(discardLogger()))
	return m, interp
}

// eventRecorder flattens every hub emission into a readable line so tests
// can assert exact ordering.
type eventRecorder struct {
	events []string
}

func recordEvents(hub *signals.Hub) *eventRecorder {
	r := &eventRecorder{}
	hub.OnEquationAdded(func(eq *equation.Equation) {
		r.events = append(r.events, "equation-added:"+eq.Name())
	})
	hub.OnEquationRemoving(func(eq *equation.Equation) {
		r.events = append(r.events, "equation-removing:"+eq.Name())
	})
	hub.OnEquationUpdated(func(ch signals.EquationChange) {
		r.events = append(r.events, fmt.Sprintf("equation-updated:%s:%s", ch.Equation.Name(), ch.Mask))
	})
	hub.OnGroupAdded(func(*equation.Group) {
		r.events = append(r.events, "group-added")
	})
	hub.OnGroupRemoving(func(*equation.Group) {
		r.events = append(r.events, "group-removing")
	})
	hub.OnGroupUpdated(func(ch signals.GroupChange) {
		r.events = append(r.events, "group-updated:"+ch.Mask.String())
	})
	return r
}

func intValue(t *testing.T, m *engine.Manager, name string) int64 {
	t.Helper()
	v, ok := m.Env().Get(name)
	require.True(t, ok, "no context entry for %q", name)
	iv, ok := v.(langtest.IntValue)
	require.True(t, ok, "context entry for %q is %T", name, v)
	return iv.Int()
}

func TestAddGroupRegistersEquations(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	id, err := m.AddGroup(ctx, "a = 1; b = a + 1")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	group, ok := m.Group(id)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, group.Names())
	assert.Equal(t, "a = 1; b = a + 1", group.Statement())

	a, ok := m.Equation("a")
	require.True(t, ok)
	assert.Equal(t, "1", a.Content())
	assert.Equal(t, lang.StatusInit, a.Status())
	assert.Empty(t, a.Dependencies())

	b, ok := m.Equation("b")
	require.True(t, ok)
	assert.Equal(t, "a + 1", b.Content())
	assert.Equal(t, []string{"a"}, b.Dependencies())

	owner, ok := m.GroupOf("b")
	require.True(t, ok)
	assert.Equal(t, id, owner)

	assert.True(t, m.Graph().HasEdge("b", "a"))
	assert.True(t, m.Graph().IsDirty("a"))
	assert.True(t, m.Graph().IsDirty("b"))
}

func TestAddGroupSignalOrder(t *testing.T) {
	m, _ := newTestManager()
	rec := recordEvents(m.Signals())

	_, err := m.AddGroup(context.Background(), "a = 1; b = a + 1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"group-added",
		"equation-added:a",
		"equation-added:b",
	}, rec.events)
}

func TestAddGroupParseError(t *testing.T) {
	m, _ := newTestManager()
	rec := recordEvents(m.Signals())

	for name, statement := range map[string]string{
		"malformed": "a a a",
		"empty":     "   ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.AddGroup(context.Background(), statement)
			var parseErr *engine.ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
	assert.Zero(t, m.Graph().Len())
	assert.Empty(t, m.Groups())
	assert.Empty(t, rec.events)
}

func TestAddGroupDuplicateName(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddGroup(ctx, "x = 1")
	require.NoError(t, err)

	t.Run("within one statement", func(t *testing.T) {
		_, err := m.AddGroup(ctx, "y = 1; y = 2")
		var dupErr *engine.DuplicateNameError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "y", dupErr.Name)
		assert.False(t, m.HasEquation("y"))
	})

	t.Run("across groups", func(t *testing.T) {
		_, err := m.AddGroup(ctx, "z = 2; x = 3")
		var dupErr *engine.DuplicateNameError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "x", dupErr.Name)
		// The statement is rejected wholesale, including the fresh name.
		assert.False(t, m.HasEquation("z"))
	})

	assert.Equal(t, 1, m.Graph().Len())
	assert.Len(t, m.Groups(), 1)
}

func TestAddGroupCycleRollsBack(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddGroup(ctx, "a = b + 1")
	require.NoError(t, err)

	_, err = m.AddGroup(ctx, "b = a + 1")
	var cycleErr *depgraph.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Path, "a")
	assert.Contains(t, cycleErr.Path, "b")

	assert.False(t, m.HasEquation("b"))
	assert.False(t, m.Graph().HasNode("b"))
	assert.Equal(t, 1, m.Graph().Len())
	assert.Len(t, m.Groups(), 1)
	// The latent reference from a survives the rejected statement.
	assert.Equal(t, []string{"b"}, m.Graph().EdgesFrom("a"))

	// A non-cyclic definition of b is still welcome and resolves a.
	_, err = m.AddGroup(ctx, "b = 2")
	require.NoError(t, err)
	m.Update(ctx)
	assert.EqualValues(t, 3, intValue(t, m, "a"))
}

func TestEditGroupAppliesDiff(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	id, err := m.AddGroup(ctx, "a = 1; b = a + 1")
	require.NoError(t, err)
	m.Update(ctx)

	rec := recordEvents(m.Signals())
	require.NoError(t, m.EditGroup(ctx, id, "a = 10; c = 2"))

	assert.Equal(t, []string{
		"equation-removing:b",
		"equation-added:c",
		"equation-updated:a:Content",
		"group-updated:Statement|EquationCount",
	}, rec.events)

	assert.False(t, m.HasEquation("b"))
	assert.False(t, m.Graph().HasNode("b"))
	_, ok := m.Env().Get("b")
	assert.False(t, ok)

	a, _ := m.Equation("a")
	assert.Equal(t, "10", a.Content())
	group, _ := m.Group(id)
	assert.Equal(t, []string{"a", "c"}, group.Names())
	assert.Equal(t, "a = 10; c = 2", group.Statement())

	rec.events = nil
	m.Update(ctx)
	assert.Equal(t, []string{
		"equation-updated:a:Value",
		"equation-updated:c:Status|Value",
	}, rec.events)
	assert.EqualValues(t, 10, intValue(t, m, "a"))
	assert.EqualValues(t, 2, intValue(t, m, "c"))
}

func TestEditGroupIdenticalStatementEmitsNothing(t *testing.T) {
	m, interp := newTestManager()
	ctx := context.Background()

	id, err := m.AddGroup(ctx, "a = 1; b = a + 1")
	require.NoError(t, err)
	m.Update(ctx)
	interp.Reset()

	rec := recordEvents(m.Signals())
	require.NoError(t, m.EditGroup(ctx, id, "a = 1; b = a + 1"))
	assert.Empty(t, rec.events)

	m.Update(ctx)
	assert.Empty(t, interp.Calls(), "nothing became dirty, nothing should re-evaluate")
}

func TestEditGroupRewiresDependencies(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	id, err := m.AddGroup(ctx, "p = 1; q = 2; r = p + 1")
	require.NoError(t, err)
	m.Update(ctx)

	require.NoError(t, m.EditGroup(ctx, id, "p = 1; q = 2; r = q + 1"))
	assert.False(t, m.Graph().HasEdge("r", "p"))
	assert.True(t, m.Graph().HasEdge("r", "q"))

	r, _ := m.Equation("r")
	assert.Equal(t, []string{"q"}, r.Dependencies())

	m.Update(ctx)
	assert.EqualValues(t, 3, intValue(t, m, "r"))
}

func TestEditGroupCycleRollsBack(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	id, err := m.AddGroup(ctx, "a = 1; b = a + 1")
	require.NoError(t, err)
	m.Update(ctx)

	rec := recordEvents(m.Signals())
	err = m.EditGroup(ctx, id, "a = b; b = a + 1")
	var cycleErr *depgraph.CycleError
	require.ErrorAs(t, err, &cycleErr)

	assert.Empty(t, rec.events)
	group, _ := m.Group(id)
	assert.Equal(t, "a = 1; b = a + 1", group.Statement())
	a, _ := m.Equation("a")
	assert.Equal(t, "1", a.Content())
	assert.Empty(t, a.Dependencies())
	assert.False(t, m.Graph().HasEdge("a", "b"))
	assert.True(t, m.Graph().HasEdge("b", "a"))
	assert.False(t, m.Graph().IsDirty("a"))
	assert.False(t, m.Graph().IsDirty("b"))
	assert.EqualValues(t, 1, intValue(t, m, "a"))
	assert.EqualValues(t, 2, intValue(t, m, "b"))
}

func TestEditGroupRejectsForeignName(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddGroup(ctx, "a = 1")
	require.NoError(t, err)
	g2, err := m.AddGroup(ctx, "b = 2")
	require.NoError(t, err)

	err = m.EditGroup(ctx, g2, "a = 9")
	var dupErr *engine.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "a", dupErr.Name)

	group, _ := m.Group(g2)
	assert.Equal(t, []string{"b"}, group.Names())
}

func TestEditGroupUnknownID(t *testing.T) {
	m, _ := newTestManager()

	err := m.EditGroup(context.Background(), uuid.New(), "a = 1")
	var nfErr *engine.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "equation group", nfErr.Kind)
}

func TestRemoveGroupLeavesDependentsDangling(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	g1, err := m.AddGroup(ctx, "a = 1")
	require.NoError(t, err)
	_, err = m.AddGroup(ctx, "b = a + 1")
	require.NoError(t, err)
	m.Update(ctx)

	rec := recordEvents(m.Signals())
	require.NoError(t, m.RemoveGroup(ctx, g1))

	assert.Equal(t, []string{"equation-removing:a", "group-removing"}, rec.events)
	assert.False(t, m.HasEquation("a"))
	_, ok := m.Env().Get("a")
	assert.False(t, ok)
	assert.True(t, m.Graph().IsDirty("b"))

	summary := m.Update(ctx)
	assert.Equal(t, engine.UpdateSummary{Failed: 1}, summary)
	b, _ := m.Equation("b")
	assert.Equal(t, lang.StatusNameError, b.Status())
	assert.Equal(t, "missing: a", b.Message())
	_, ok = m.Env().Get("b")
	assert.False(t, ok)

	// Redefining a reactivates the latent reference and heals b.
	_, err = m.AddGroup(ctx, "a = 5")
	require.NoError(t, err)
	summary = m.Update(ctx)
	assert.Equal(t, engine.UpdateSummary{Updated: 2}, summary)
	b, _ = m.Equation("b")
	assert.Equal(t, lang.StatusSuccess, b.Status())
	assert.Empty(t, b.Message())
	assert.EqualValues(t, 6, intValue(t, m, "b"))
}

func TestRemoveGroupUnknownID(t *testing.T) {
	m, _ := newTestManager()

	err := m.RemoveGroup(context.Background(), uuid.New())
	var nfErr *engine.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestResetClearsEverything(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddGroup(ctx, "a = 1")
	require.NoError(t, err)
	_, err = m.AddGroup(ctx, "b = a + 1")
	require.NoError(t, err)
	m.Update(ctx)

	rec := recordEvents(m.Signals())
	m.Reset(ctx)

	// Groups fall in reverse insertion order, each with the removal
	// discipline of RemoveGroup.
	assert.Equal(t, []string{
		"equation-removing:b",
		"group-removing",
		"equation-removing:a",
		"group-removing",
	}, rec.events)
	assert.Zero(t, m.Graph().Len())
	assert.Zero(t, m.Env().Len())
	assert.Empty(t, m.Groups())

	// The stamp counter survives a reset, so post-reset events still
	// compare as newer.
	_, err = m.AddGroup(ctx, "c = 1")
	require.NoError(t, err)
	m.Update(ctx)
	assert.Greater(t, m.Graph().NodeStamp("c"), depgraph.Stamp(2))
}
