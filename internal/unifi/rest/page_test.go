// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePaginator serves a fixed dataset in pages of at most limit items.
func fakePaginator(data []int) func(ctx context.Context, offset int64, limit int32) (Page[int], error) {
	return func(_ context.Context, offset int64, limit int32) (Page[int], error) {
		total := int64(len(data))
		if offset > total {
			offset = total
		}
		end := offset + int64(limit)
		if end > total {
			end = total
		}
		chunk := data[offset:end]
		return Page[int]{
			Offset:     offset,
			Limit:      limit,
			Count:      int32(len(chunk)),
			TotalCount: total,
			Data:       chunk,
		}, nil
	}
}

func TestPaginateAllConcatenatesInOrder(t *testing.T) {
	data := make([]int, 0, 103)
	for i := 0; i < 103; i++ {
		data = append(data, i)
	}

	for _, limit := range []int32{1, 7, 25, 103, 200} {
		got, err := PaginateAll(t.Context(), limit, fakePaginator(data))
		require.NoError(t, err, "limit %d", limit)
		assert.Equal(t, data, got, "limit %d", limit)
	}
}

func TestPaginateAllEmptyDataset(t *testing.T) {
	got, err := PaginateAll(t.Context(), 25, fakePaginator(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPaginateAllStopsAtTotalCountCeiling(t *testing.T) {
	// A server that always fills the page but reports a total; the helper
	// must stop at the ceiling instead of looping forever.
	calls := 0
	fetch := func(_ context.Context, offset int64, limit int32) (Page[int], error) {
		calls++
		chunk := make([]int, limit)
		return Page[int]{Offset: offset, Limit: limit, Count: limit, TotalCount: 50, Data: chunk}, nil
	}

	got, err := PaginateAll(t.Context(), 25, fetch)
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.Equal(t, 2, calls)
}

func TestPaginateAllPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	fetch := func(_ context.Context, offset int64, limit int32) (Page[int], error) {
		calls++
		if calls == 2 {
			return Page[int]{}, boom
		}
		chunk := make([]int, limit)
		return Page[int]{Count: limit, TotalCount: 1000, Data: chunk}, nil
	}

	_, err := PaginateAll(t.Context(), 10, fetch)
	assert.ErrorIs(t, err, boom)
}
