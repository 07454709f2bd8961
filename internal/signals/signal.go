// Package signals implements the synchronous event fan-out of the equation
// engine: a typed signal with ordered slots, disconnectable connections, and
// a hub bundling one signal per equation event.
//
// Emission is synchronous and runs in subscription order; the emitter blocks
// until every slot has returned. Slots may re-enter the signal (connect,
// disconnect, or emit again) because invocation happens on a snapshot taken
// outside the lock. A slot connected during an emission is not invoked by
// that emission; a slot disconnected during one may still see it once.
package signals

import "sync"

type slot[T any] struct {
	id int
	fn func(T)
}

// Signal is an ordered list of slots invoked synchronously on Emit.
// The zero value is not usable; create signals with NewSignal.
type Signal[T any] struct {
	mu     sync.Mutex
	slots  []slot[T]
	nextID int
}

// NewSignal returns an empty signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Connect appends fn to the slot list and returns its connection. fn must not
// be nil.
func (s *Signal[T]) Connect(fn func(T)) Connection {
	if fn == nil {
		panic("signals: nil slot")
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.slots = append(s.slots, slot[T]{id: id, fn: fn})
	s.mu.Unlock()
	return Connection{disconnect: func() { s.remove(id) }}
}

func (s *Signal[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl.id == id {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}

// Emit invokes every currently connected slot with payload, in subscription
// order.
func (s *Signal[T]) Emit(payload T) {
	s.mu.Lock()
	snapshot := make([]slot[T], len(s.slots))
	copy(snapshot, s.slots)
	s.mu.Unlock()

	for _, sl := range snapshot {
		sl.fn(payload)
	}
}

// Len returns the number of connected slots.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// DisconnectAll removes every slot.
func (s *Signal[T]) DisconnectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = nil
}

// Connection identifies one subscription. The zero value is inert.
type Connection struct {
	disconnect func()
}

// Disconnect removes the slot from its signal. Calling it again, or on a
// zero connection, is a no-op.
func (c Connection) Disconnect() {
	if c.disconnect != nil {
		c.disconnect()
	}
}

// Scope collects connections so they can be torn down together, the scoped
// subscription analog for callers that tie observer lifetimes to their own.
type Scope struct {
	mu    sync.Mutex
	conns []Connection
}

// Track registers conn with the scope and returns it unchanged.
func (s *Scope) Track(conn Connection) Connection {
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()
	return conn
}

// Close disconnects every tracked connection. The scope can be reused
// afterwards.
func (s *Scope) Close() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for _, c := range conns {
		c.Disconnect()
	}
}
