package worker

import (
	"testing"

	"go.uber.org/atomic"
)

func TestRunVisitsEveryIndex(t *testing.T) {
	p := New(4)
	defer p.Close()

	seen := make([]atomic.Int32, 103)
	if err := p.Run(len(seen), func(i int) {
		seen[i].Inc()
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range seen {
		if seen[i].Load() != 1 {
			t.Fatalf("index %d visited %d times", i, seen[i].Load())
		}
	}
}

func TestRunRecoversPanics(t *testing.T) {
	p := New(2)
	defer p.Close()

	var done atomic.Int32
	err := p.Run(10, func(i int) {
		if i == 0 {
			panic("boom")
		}
		done.Inc()
	})
	if err == nil {
		t.Fatalf("expected an error from a panicking job")
	}
	// The pool must still be usable afterwards.
	if err := p.Run(4, func(int) { done.Inc() }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
