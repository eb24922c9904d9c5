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

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	assert.Equal(t, 100, q.Len())

	for i := 0; i < 100; i++ {
		v, err := q.Pop(t.Context())
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string]()
	got := make(chan string, 1)
	go func() {
		v, err := q.Pop(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push("x")

	select {
	case v := <-got:
		assert.Equal(t, "x", v)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never woke up")
	}
}

func TestQueueCloseDrains(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Close()
	q.Push(2) // dropped

	v, err := q.Pop(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = q.Pop(t.Context())
	assert.ErrorIs(t, err, ErrClosed)
}
