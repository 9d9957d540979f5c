package queue

import (
	"errors"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := New[string](4)

	for _, s := range []string{"A", "B", "C"} {
		if err := q.Push(s); err != nil {
			t.Fatalf("Push(%q): %v", s, err)
		}
	}

	if got := q.Len(); got != 3 {
		t.Fatalf("Len: got %d, want 3", got)
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop: queue empty, want %q", want)
		}
		if got != want {
			t.Errorf("Pop: got %q, want %q", got, want)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue returned ok")
	}
}

func TestQueueLimit(t *testing.T) {
	q := New[int](2)

	if err := q.Push(1); err != nil {
		t.Fatalf("Push 1: %v", err)
	}
	if err := q.Push(2); err != nil {
		t.Fatalf("Push 2: %v", err)
	}
	if !q.Full() {
		t.Error("Full: got false, want true")
	}
	if err := q.Push(3); !errors.Is(err, ErrFull) {
		t.Fatalf("Push 3: got %v, want ErrFull", err)
	}

	// Room again after a pop.
	q.Pop()
	if err := q.Push(3); err != nil {
		t.Fatalf("Push after Pop: %v", err)
	}

	v, _ := q.Peek()
	if v != 2 {
		t.Errorf("Peek: got %d, want 2", v)
	}
}

func TestQueueUnbounded(t *testing.T) {
	q := New[int](0)
	for i := 0; i < 100; i++ {
		if err := q.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if q.Full() {
		t.Error("unbounded queue reports full")
	}
}

func TestQueueReuseAfterDrain(t *testing.T) {
	q := New[int](3)
	for round := 0; round < 5; round++ {
		for i := 0; i < 3; i++ {
			if err := q.Push(i); err != nil {
				t.Fatalf("round %d Push(%d): %v", round, i, err)
			}
		}
		for i := 0; i < 3; i++ {
			if v, ok := q.Pop(); !ok || v != i {
				t.Fatalf("round %d Pop: got (%d, %v), want (%d, true)", round, v, ok, i)
			}
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len after drains: got %d, want 0", q.Len())
	}
}
