// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Recv after the broadcast has been closed and the
// subscriber has drained every retained message.
var ErrClosed = errors.New("stream: broadcast closed")

// LaggedError reports that a subscriber fell behind the retained backlog and
// skipped Missed messages. The subscriber remains usable; the next Recv
// resumes at the oldest retained message.
type LaggedError struct {
	Missed uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("stream: subscriber lagged, %d messages dropped", e.Missed)
}

// Broadcast fans messages out to any number of subscribers through a shared
// ring of fixed capacity. Send never blocks: when a subscriber falls more
// than the ring capacity behind, it loses the oldest messages and receives a
// LaggedError instead of stalling the producer.
type Broadcast[T any] struct {
	mu     sync.Mutex
	buf    []T
	next   uint64 // sequence of the next message to be written
	filled int
	subs   map[*BroadcastSub[T]]struct{}
	closed bool
}

// NewBroadcast returns a broadcast retaining up to capacity messages.
func NewBroadcast[T any](capacity int) *Broadcast[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Broadcast[T]{
		buf:  make([]T, capacity),
		subs: make(map[*BroadcastSub[T]]struct{}),
	}
}

// Send appends v to the ring and wakes all subscribers. It never blocks.
// Sends on a closed broadcast are dropped.
func (b *Broadcast[T]) Send(v T) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.buf[b.next%uint64(len(b.buf))] = v
	b.next++
	if b.filled < len(b.buf) {
		b.filled++
	}
	for s := range b.subs {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a subscriber that observes messages sent after this
// call.
func (b *Broadcast[T]) Subscribe() *BroadcastSub[T] {
	s := &BroadcastSub[T]{b: b, notify: make(chan struct{}, 1)}
	b.mu.Lock()
	s.seq = b.next
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Close wakes all subscribers; once each has drained its backlog, Recv
// returns ErrClosed.
func (b *Broadcast[T]) Close() {
	b.mu.Lock()
	b.closed = true
	for s := range b.subs {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

// BroadcastSub is a single subscriber handle. Not safe for concurrent use by
// multiple goroutines.
type BroadcastSub[T any] struct {
	b      *Broadcast[T]
	seq    uint64
	notify chan struct{}
}

// Recv returns the next message in publisher order. If the subscriber fell
// behind the ring it returns a LaggedError once, then resumes at the oldest
// retained message. After Close and a drained backlog it returns ErrClosed.
func (s *BroadcastSub[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	for {
		s.b.mu.Lock()
		oldest := s.b.next - uint64(s.b.filled)
		if s.seq < oldest {
			missed := oldest - s.seq
			s.seq = oldest
			s.b.mu.Unlock()
			return zero, &LaggedError{Missed: missed}
		}
		if s.seq < s.b.next {
			v := s.b.buf[s.seq%uint64(len(s.b.buf))]
			s.seq++
			s.b.mu.Unlock()
			return v, nil
		}
		closed := s.b.closed
		s.b.mu.Unlock()
		if closed {
			return zero, ErrClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.notify:
		}
	}
}

// Close unsubscribes.
func (s *BroadcastSub[T]) Close() {
	s.b.mu.Lock()
	delete(s.b.subs, s)
	s.b.mu.Unlock()
}
