package envstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recalchq/recalc/internal/lang"
	"github.com/recalchq/recalc/internal/lang/langtest"
)

func TestStoreBasics(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("a"))

	s.Set("a", langtest.IntValue(1))
	require.True(t, s.Contains("a"))
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())

	s.Set("a", langtest.IntValue(2))
	v, _ = s.Get("a")
	assert.Equal(t, "2", v.String())
	assert.Equal(t, 1, s.Len())
}

func TestStoreRemove(t *testing.T) {
	s := New()
	s.Set("a", langtest.IntValue(1))

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.False(t, s.Contains("a"))

	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStoreKeysSorted(t *testing.T) {
	s := New()
	s.Set("c", langtest.IntValue(3))
	s.Set("a", langtest.IntValue(1))
	s.Set("b", langtest.IntValue(2))

	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestStoreClear(t *testing.T) {
	s := New()
	s.Set("a", langtest.IntValue(1))
	s.Set("b", langtest.IntValue(2))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
}

func TestStoreImplementsEnv(t *testing.T) {
	var env lang.Env = New()
	env.Set("x", langtest.IntValue(7))
	assert.True(t, env.Contains("x"))
}
