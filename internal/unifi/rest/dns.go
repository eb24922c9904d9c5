// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
)

// DnsPolicy is the wire form of a local DNS record or forward rule.
type DnsPolicy struct {
	ID       string `json:"id"`
	Type     string `json:"recordType"` // A, AAAA, CNAME, MX, TXT, SRV, FORWARD_DOMAIN
	Domain   string `json:"domain"`
	Value    string `json:"value"`
	Enabled  *bool  `json:"enabled"`
	TTL      *int   `json:"ttlSeconds"`
	Priority *int   `json:"priority"`
}

// ListDnsPolicies returns one page of DNS policies.
func (c *Client) ListDnsPolicies(ctx context.Context, siteID string, offset int64, limit int32) (Page[DnsPolicy], error) {
	return get[Page[DnsPolicy]](ctx, c, sitePath(siteID, "dns/policies"), pageQuery(offset, limit))
}

// GetDnsPolicy fetches one policy.
func (c *Client) GetDnsPolicy(ctx context.Context, siteID, id string) (DnsPolicy, error) {
	return get[DnsPolicy](ctx, c, sitePath(siteID, "dns/policies/"+url.PathEscape(id)), nil)
}

// CreateDnsPolicy creates a policy.
func (c *Client) CreateDnsPolicy(ctx context.Context, siteID string, body map[string]any) (DnsPolicy, error) {
	return post[DnsPolicy](ctx, c, sitePath(siteID, "dns/policies"), body)
}

// UpdateDnsPolicy replaces a policy.
func (c *Client) UpdateDnsPolicy(ctx context.Context, siteID, id string, body map[string]any) (DnsPolicy, error) {
	return put[DnsPolicy](ctx, c, sitePath(siteID, "dns/policies/"+url.PathEscape(id)), body)
}

// DeleteDnsPolicy removes a policy.
func (c *Client) DeleteDnsPolicy(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "dns/policies/"+url.PathEscape(id)))
}
