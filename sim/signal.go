package sim

// A Signal is a registered value. Get returns the value committed at the last
// clock edge. Set stages a value that becomes visible after the next Latch.
// A signal that is not Set keeps its value.
type Signal[T any] struct {
	cur  T
	next T
}

// NewSignal creates a signal that holds the given value.
func NewSignal[T any](v T) *Signal[T] {
	return &Signal[T]{cur: v, next: v}
}

// Get returns the latched value.
func (s *Signal[T]) Get() T {
	return s.cur
}

// Next returns the value that will be latched at the next edge.
func (s *Signal[T]) Next() T {
	return s.next
}

// Set stages a value for the next edge.
func (s *Signal[T]) Set(v T) {
	s.next = v
}

// Latch commits the staged value.
func (s *Signal[T]) Latch() {
	s.cur = s.next
}

// Reset forces both the latched and the staged value.
func (s *Signal[T]) Reset(v T) {
	s.cur = v
	s.next = v
}
