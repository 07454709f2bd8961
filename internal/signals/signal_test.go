package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitInvokesSlotsInSubscriptionOrder(t *testing.T) {
	s := NewSignal[int]()
	var order []string

	s.Connect(func(int) { order = append(order, "first") })
	s.Connect(func(int) { order = append(order, "second") })
	s.Connect(func(int) { order = append(order, "third") })

	s.Emit(0)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	s := NewSignal[string]()
	calls := 0
	conn := s.Connect(func(string) { calls++ })

	s.Emit("a")
	conn.Disconnect()
	conn.Disconnect()
	s.Emit("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Len())

	var zero Connection
	zero.Disconnect() // must not panic
}

func TestDisconnectMiddleSlotKeepsOrder(t *testing.T) {
	s := NewSignal[int]()
	var order []string
	s.Connect(func(int) { order = append(order, "a") })
	conn := s.Connect(func(int) { order = append(order, "b") })
	s.Connect(func(int) { order = append(order, "c") })

	conn.Disconnect()
	s.Emit(0)
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestReentrantEmitAndConnect(t *testing.T) {
	s := NewSignal[int]()
	var got []int

	s.Connect(func(v int) {
		got = append(got, v)
		if v == 1 {
			// Re-entrant emission from within a slot is permitted.
			s.Emit(2)
		}
	})
	s.Emit(1)
	assert.Equal(t, []int{1, 2}, got)

	t.Run("slot connected during emission is not invoked by it", func(t *testing.T) {
		s := NewSignal[int]()
		lateCalls := 0
		s.Connect(func(int) {
			s.Connect(func(int) { lateCalls++ })
		})
		s.Emit(0)
		assert.Equal(t, 0, lateCalls)
		s.Emit(0)
		assert.Equal(t, 1, lateCalls)
	})

	t.Run("slot disconnecting itself during emission", func(t *testing.T) {
		s := NewSignal[int]()
		calls := 0
		var conn Connection
		conn = s.Connect(func(int) {
			calls++
			conn.Disconnect()
		})
		s.Emit(0)
		s.Emit(0)
		assert.Equal(t, 1, calls)
	})
}

func TestConnectNilSlotPanics(t *testing.T) {
	s := NewSignal[int]()
	assert.Panics(t, func() { s.Connect(nil) })
}

func TestDisconnectAll(t *testing.T) {
	s := NewSignal[int]()
	calls := 0
	s.Connect(func(int) { calls++ })
	s.Connect(func(int) { calls++ })

	s.DisconnectAll()
	s.Emit(0)
	assert.Equal(t, 0, calls)
}

func TestScopeClosesAllConnections(t *testing.T) {
	s := NewSignal[int]()
	var scope Scope
	calls := 0

	scope.Track(s.Connect(func(int) { calls++ }))
	scope.Track(s.Connect(func(int) { calls++ }))
	s.Emit(0)
	assert.Equal(t, 2, calls)

	scope.Close()
	s.Emit(0)
	assert.Equal(t, 2, calls, "no slot may fire after the scope closed")
	assert.Equal(t, 0, s.Len())

	// The scope is reusable after Close.
	scope.Track(s.Connect(func(int) { calls++ }))
	s.Emit(0)
	assert.Equal(t, 3, calls)
	scope.Close()
}
