// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import "context"

// Page is the pagination envelope every integration list endpoint returns.
type Page[T any] struct {
	Offset     int64 `json:"offset"`
	Limit      int32 `json:"limit"`
	Count      int32 `json:"count"`
	TotalCount int64 `json:"totalCount"`
	Data       []T   `json:"data"`
}

// PaginateAll drains a paginated endpoint: it advances the offset by the
// received count and stops when a page comes back short or the reported
// total is reached. The result is the concatenation of every page's data in
// order.
func PaginateAll[T any](ctx context.Context, limit int32, fetch func(ctx context.Context, offset int64, limit int32) (Page[T], error)) ([]T, error) {
	if limit <= 0 {
		limit = 25
	}
	var all []T
	var offset int64
	for {
		page, err := fetch(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		received := int32(len(page.Data))
		offset += int64(received)
		if received < limit {
			return all, nil
		}
		if page.TotalCount > 0 && offset >= page.TotalCount {
			return all, nil
		}
	}
}
