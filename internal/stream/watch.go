// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package stream provides the channel primitives the controller runtime is
// built on: a last-value-wins Watch, a lag-signaling Broadcast, and an
// unbounded Queue. Producers never block on slow consumers.
package stream

import (
	"context"
	"sync"
)

// Watch holds a single current value. Every Set replaces it and wakes
// subscribers; a subscriber that misses intermediate values only ever
// observes the latest one. A late subscriber immediately observes the
// current value on its first Next.
type Watch[T any] struct {
	mu      sync.Mutex
	val     T
	version uint64
	subs    map[*WatchSub[T]]struct{}
}

// NewWatch returns an empty watch. Get and Next report nothing until the
// first Set.
func NewWatch[T any]() *Watch[T] {
	return &Watch[T]{subs: make(map[*WatchSub[T]]struct{})}
}

// NewWatchValue returns a watch pre-seeded with an initial value.
func NewWatchValue[T any](initial T) *Watch[T] {
	w := NewWatch[T]()
	w.Set(initial)
	return w
}

// Set stores v as the current value and wakes all subscribers.
func (w *Watch[T]) Set(v T) {
	w.mu.Lock()
	w.val = v
	w.version++
	for s := range w.subs {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
	w.mu.Unlock()
}

// Get returns the current value, if one has been set.
func (w *Watch[T]) Get() (T, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.val, w.version > 0
}

// Subscribe registers a new subscriber. If the watch already holds a value,
// the subscriber's first Next returns it without blocking.
func (w *Watch[T]) Subscribe() *WatchSub[T] {
	s := &WatchSub[T]{w: w, notify: make(chan struct{}, 1)}
	w.mu.Lock()
	w.subs[s] = struct{}{}
	w.mu.Unlock()
	return s
}

// WatchSub is a single subscriber handle. Not safe for concurrent use by
// multiple goroutines.
type WatchSub[T any] struct {
	w      *Watch[T]
	seen   uint64
	notify chan struct{}
}

// Next blocks until the watch holds a value the subscriber has not observed
// yet, then returns it. Intermediate values may be skipped.
func (s *WatchSub[T]) Next(ctx context.Context) (T, error) {
	for {
		s.w.mu.Lock()
		if s.w.version > s.seen {
			s.seen = s.w.version
			v := s.w.val
			s.w.mu.Unlock()
			return v, nil
		}
		s.w.mu.Unlock()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-s.notify:
		}
	}
}

// Peek returns the current value without consuming it.
func (s *WatchSub[T]) Peek() (T, bool) {
	return s.w.Get()
}

// Close unsubscribes. Further Next calls block until ctx cancellation.
func (s *WatchSub[T]) Close() {
	s.w.mu.Lock()
	delete(s.w.subs, s)
	s.w.mu.Unlock()
}
