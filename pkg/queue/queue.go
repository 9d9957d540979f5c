package queue

import "errors"

// ErrFull is returned by Push when the queue holds Limit entries.
var ErrFull = errors.New("queue is full")

// Queue is a bounded first-in first-out queue.
type Queue[T any] struct {
	items []T
	head  int
	limit int
}

// New creates a queue that holds at most limit entries.
// A limit of zero or less means the queue is unbounded.
func New[T any](limit int) *Queue[T] {
	return &Queue[T]{limit: limit}
}

// Limit returns the capacity bound.
func (q *Queue[T]) Limit() int {
	return q.limit
}

// Len returns the number of queued entries.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// Full reports whether a Push would fail.
func (q *Queue[T]) Full() bool {
	return q.limit > 0 && q.Len() >= q.limit
}

// Push appends v to the tail.
func (q *Queue[T]) Push(v T) error {
	if q.Full() {
		return ErrFull
	}
	q.items = append(q.items, v)
	return nil
}

// Pop removes and returns the head entry.
// The second result is false when the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.Len() == 0 {
		return zero, false
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once the queue runs dry.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v, true
}

// Peek returns the head entry without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}
