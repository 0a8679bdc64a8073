// Package queue provides the wait-free handover primitives between the
// control goroutine and the render callback.
package queue

import "sync/atomic"

// SPSC is a bounded FIFO for exactly one producer goroutine and one
// consumer goroutine. Neither side blocks or allocates.
type SPSC[T any] struct {
	buf  []T
	mask uint64

	// head is written only by the consumer, tail only by the producer.
	head atomic.Uint64
	_    [56]byte
	tail atomic.Uint64
}

// NewSPSC creates a queue holding at least capacity items. The capacity is
// rounded up to a power of two.
func NewSPSC[T any](capacity int) *SPSC[T] {
	n := 2
	for n < capacity {
		n <<= 1
	}
	return &SPSC[T]{buf: make([]T, n), mask: uint64(n - 1)}
}

// Push appends v. It reports false without blocking when the queue is full.
func (q *SPSC[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest item.
func (q *SPSC[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	if head == q.tail.Load() {
		return zero, false
	}
	i := head & q.mask
	v := q.buf[i]
	// Drop the reference so payloads such as decoded tracks can be
	// collected once handed over.
	q.buf[i] = zero
	q.head.Store(head + 1)
	return v, true
}

// Drain pops every queued item into fn and returns how many were popped.
// Items pushed while draining may or may not be included.
func (q *SPSC[T]) Drain(fn func(T)) int {
	n := 0
	for {
		v, ok := q.Pop()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}

// Len returns the number of queued items. It is exact only when called
// from the producer or consumer while the other side is idle.
func (q *SPSC[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the queue capacity.
func (q *SPSC[T]) Cap() int { return len(q.buf) }
