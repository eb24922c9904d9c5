// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stream

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO with a single consumer. Push never blocks,
// which keeps fast producers (the push-stream bridge) decoupled from the
// merge task draining the queue.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
	closed bool
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Push appends v. Pushes after Close are dropped.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, v)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	q.mu.Unlock()
}

// Pop blocks until an item is available or ctx is cancelled. After Close it
// drains the remaining items, then returns ErrClosed.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting new items and wakes the consumer.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	select {
	case q.notify <- struct{}{}:
	default:
	}
	q.mu.Unlock()
}
