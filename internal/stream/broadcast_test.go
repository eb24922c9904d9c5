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

func TestBroadcastOrderPreserved(t *testing.T) {
	b := NewBroadcast[int](8)
	sub := b.Subscribe()
	defer sub.Close()

	for i := 0; i < 5; i++ {
		b.Send(i)
	}
	for i := 0; i < 5; i++ {
		v, err := sub.Recv(t.Context())
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestBroadcastLagSignal(t *testing.T) {
	b := NewBroadcast[int](4)
	sub := b.Subscribe()
	defer sub.Close()

	// Overrun the ring by three messages.
	for i := 0; i < 7; i++ {
		b.Send(i)
	}

	_, err := sub.Recv(t.Context())
	var lag *LaggedError
	require.ErrorAs(t, err, &lag)
	assert.Equal(t, uint64(3), lag.Missed)

	// Resumes at the oldest retained message; suffix order intact.
	for want := 3; want < 7; want++ {
		v, err := sub.Recv(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

func TestBroadcastSlowSubscriberDoesNotBlockProducer(t *testing.T) {
	b := NewBroadcast[int](2)
	sub := b.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer stalled on a slow subscriber")
	}
}

func TestBroadcastCloseDrainsThenErrClosed(t *testing.T) {
	b := NewBroadcast[string](4)
	sub := b.Subscribe()
	defer sub.Close()

	b.Send("a")
	b.Send("b")
	b.Close()

	v, err := sub.Recv(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	v, err = sub.Recv(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	_, err = sub.Recv(t.Context())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBroadcastPerSubscriberOrdering(t *testing.T) {
	b := NewBroadcast[int](64)
	a := b.Subscribe()
	c := b.Subscribe()
	defer a.Close()
	defer c.Close()

	for i := 0; i < 32; i++ {
		b.Send(i)
	}
	for i := 0; i < 32; i++ {
		va, err := a.Recv(t.Context())
		require.NoError(t, err)
		vc, err := c.Recv(t.Context())
		require.NoError(t, err)
		assert.Equal(t, i, va)
		assert.Equal(t, i, vc)
	}
}

func TestBroadcastRecvCancel(t *testing.T) {
	b := NewBroadcast[int](4)
	sub := b.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := sub.Recv(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
