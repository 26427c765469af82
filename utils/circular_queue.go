package utils

import (
	"errors"
	"iter"

	"github.com/oomph-ac/dogfight/oerror"
)

// CircularQueue is a fixed-capacity FIFO. Appending to a full queue evicts the oldest element.
type CircularQueue[T any] struct {
	items []T
	head  int
	tail  int
	size  int
}

// NewCircularQueue creates a queue holding at most capacity items. If propagate is non-nil the queue starts
// full of propagated items, otherwise it starts empty.
func NewCircularQueue[T any](capacity int, propagate func() T) *CircularQueue[T] {
	queue := &CircularQueue[T]{
		items: make([]T, capacity),
	}
	if propagate != nil {
		for index := range queue.items {
			queue.items[index] = propagate()
		}
		queue.size = capacity
	}
	return queue
}

// Get returns the element at logical position index (0 = oldest), or an error if out of range.
func (q *CircularQueue[T]) Get(index int) (T, error) {
	var zero T
	if index < 0 || index >= q.size {
		return zero, errors.New("circularqueue: get out of range")
	}
	return q.items[(q.head+index)%len(q.items)], nil
}

// Set sets the element at logical position index (0 = oldest), or returns an error if out of range.
func (q *CircularQueue[T]) Set(index int, item T) error {
	if index < 0 || index >= q.size {
		return errors.New("circularqueue: set out of range")
	}
	q.items[(q.head+index)%len(q.items)] = item
	return nil
}

// Oldest returns the oldest element. The boolean is false if the queue is empty.
func (q *CircularQueue[T]) Oldest() (item T, ok bool) {
	if q.size == 0 {
		return item, false
	}
	return q.items[q.head], true
}

// Latest returns the most recently appended element. The boolean is false if the queue is empty.
func (q *CircularQueue[T]) Latest() (item T, ok bool) {
	if q.size == 0 {
		return item, false
	}
	return q.items[(q.tail-1+len(q.items))%len(q.items)], true
}

// Iter yields the elements from oldest to newest.
func (q *CircularQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for index := range q.size {
			if !yield(q.items[(q.head+index)%len(q.items)]) {
				return
			}
		}
	}
}

// Len returns the number of items currently held.
func (q *CircularQueue[T]) Len() int {
	return q.size
}

// Cap returns the maximum number of items the queue can hold.
func (q *CircularQueue[T]) Cap() int {
	return len(q.items)
}

// Pop removes and returns the oldest element. The boolean ok is false if the
// queue is empty.
func (q *CircularQueue[T]) Pop() (item T, ok bool) {
	if q.size == 0 {
		return item, false
	}
	item = q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	return item, true
}

// Clear drops every element.
func (q *CircularQueue[T]) Clear() {
	clear(q.items)
	q.head, q.tail, q.size = 0, 0, 0
}

// Append appends an item or returns an error if the queue has zero capacity.
func (q *CircularQueue[T]) Append(item T) error {
	if len(q.items) == 0 {
		return oerror.New("circularQueue: append on zero-capacity queue")
	}

	// Write the new item at the current tail position.
	q.items[q.tail] = item

	// If the queue is already full, advance head to overwrite the oldest element.
	if q.size == len(q.items) {
		q.head = (q.head + 1) % len(q.items)
	} else {
		q.size++
	}
	q.tail = (q.tail + 1) % len(q.items)
	return nil
}
