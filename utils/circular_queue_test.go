package utils

import (
	"slices"
	"testing"
)

func TestCircularQueueEvictsOldest(t *testing.T) {
	q := NewCircularQueue[int](3, nil)
	if q.Len() != 0 || q.Cap() != 3 {
		t.Fatalf("expected empty queue with capacity 3, got len=%d cap=%d", q.Len(), q.Cap())
	}
	for i := 1; i <= 5; i++ {
		if err := q.Append(i); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if q.Len() > q.Cap() {
			t.Fatalf("queue exceeded capacity: %d", q.Len())
		}
	}

	got := slices.Collect(q.Iter())
	if !slices.Equal(got, []int{3, 4, 5}) {
		t.Fatalf("expected [3 4 5], got %v", got)
	}
	if v, _ := q.Oldest(); v != 3 {
		t.Fatalf("expected oldest 3, got %d", v)
	}
	if v, _ := q.Latest(); v != 5 {
		t.Fatalf("expected latest 5, got %d", v)
	}
}

func TestCircularQueuePopAndGet(t *testing.T) {
	q := NewCircularQueue(2, func() int { return 7 })
	if q.Len() != 2 {
		t.Fatalf("propagated queue should start full, got %d", q.Len())
	}
	_ = q.Append(9)
	if v, err := q.Get(1); err != nil || v != 9 {
		t.Fatalf("expected 9 at index 1, got %d (%v)", v, err)
	}
	if v, ok := q.Pop(); !ok || v != 7 {
		t.Fatalf("expected to pop 7, got %d", v)
	}
	if _, err := q.Get(1); err == nil {
		t.Fatal("expected out of range error")
	}
	q.Clear()
	if _, ok := q.Latest(); ok {
		t.Fatal("cleared queue must be empty")
	}
}

func TestCircularQueueZeroCapacity(t *testing.T) {
	q := NewCircularQueue[int](0, nil)
	if err := q.Append(1); err == nil {
		t.Fatal("expected append on zero-capacity queue to fail")
	}
}
