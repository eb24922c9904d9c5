// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
)

// TrafficMatchingList is the wire form of a reusable traffic classifier.
type TrafficMatchingList struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MatchType   string   `json:"matchType"`
	Entries     []string `json:"entries"`
}

// ListTrafficMatchingLists returns one page of traffic matching lists.
func (c *Client) ListTrafficMatchingLists(ctx context.Context, siteID string, offset int64, limit int32) (Page[TrafficMatchingList], error) {
	return get[Page[TrafficMatchingList]](ctx, c, sitePath(siteID, "traffic-matching-lists"), pageQuery(offset, limit))
}

// GetTrafficMatchingList fetches one list.
func (c *Client) GetTrafficMatchingList(ctx context.Context, siteID, id string) (TrafficMatchingList, error) {
	return get[TrafficMatchingList](ctx, c, sitePath(siteID, "traffic-matching-lists/"+url.PathEscape(id)), nil)
}

// CreateTrafficMatchingList creates a list.
func (c *Client) CreateTrafficMatchingList(ctx context.Context, siteID string, body map[string]any) (TrafficMatchingList, error) {
	return post[TrafficMatchingList](ctx, c, sitePath(siteID, "traffic-matching-lists"), body)
}

// UpdateTrafficMatchingList replaces a list.
func (c *Client) UpdateTrafficMatchingList(ctx context.Context, siteID, id string, body map[string]any) (TrafficMatchingList, error) {
	return put[TrafficMatchingList](ctx, c, sitePath(siteID, "traffic-matching-lists/"+url.PathEscape(id)), body)
}

// DeleteTrafficMatchingList removes a list.
func (c *Client) DeleteTrafficMatchingList(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "traffic-matching-lists/"+url.PathEscape(id)))
}
