package queue

import "sync/atomic"

// Slot is a single-value mailbox with replace-if-empty semantics: a
// publish while the previous value is still unread is dropped. It is
// meant for one producer and one consumer.
type Slot[T any] struct {
	full atomic.Bool
	val  T
}

// TryPublish stores v if the slot is empty and reports whether it did.
func (s *Slot[T]) TryPublish(v T) bool {
	if s.full.Load() {
		return false
	}
	s.val = v
	s.full.Store(true)
	return true
}

// Take returns and clears the stored value.
func (s *Slot[T]) Take() (T, bool) {
	var zero T
	if !s.full.Load() {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.full.Store(false)
	return v, true
}

// Full reports whether an unread value is waiting.
func (s *Slot[T]) Full() bool { return s.full.Load() }
