// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchLateSubscriberSeesCurrentValue(t *testing.T) {
	w := NewWatch[int]()
	w.Set(7)

	sub := w.Subscribe()
	defer sub.Close()

	v, err := sub.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestWatchCoalescesToLatest(t *testing.T) {
	w := NewWatch[int]()
	sub := w.Subscribe()
	defer sub.Close()

	w.Set(1)
	w.Set(2)
	w.Set(3)

	v, err := sub.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	// No re-delivery of already observed values.
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatchEmptyBlocks(t *testing.T) {
	w := NewWatch[string]()

	_, ok := w.Get()
	assert.False(t, ok)

	sub := w.Subscribe()
	defer sub.Close()

	done := make(chan string, 1)
	go func() {
		v, err := sub.Next(context.Background())
		if err == nil {
			done <- v
		}
	}()

	w.Set("ready")
	select {
	case v := <-done:
		assert.Equal(t, "ready", v)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never woke up")
	}
}

func TestWatchMultipleSubscribers(t *testing.T) {
	w := NewWatchValue(10)
	a := w.Subscribe()
	b := w.Subscribe()
	defer a.Close()
	defer b.Close()

	va, err := a.Next(t.Context())
	require.NoError(t, err)
	vb, err := b.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 10, va)
	assert.Equal(t, 10, vb)

	w.Set(11)
	va, err = a.Next(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 11, va)
}
