// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
)

// FirewallPolicy is the wire form of a zone policy.
type FirewallPolicy struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Enabled         *bool  `json:"enabled"`
	Action          string `json:"action"` // ALLOW, DROP, REJECT
	SourceZone      *Ref   `json:"sourceZone"`
	DestinationZone *Ref   `json:"destinationZone"`
	Protocol        string `json:"protocol"`
	LoggingEnabled  *bool  `json:"loggingEnabled"`
	Index           int    `json:"index"`
}

// FirewallZone is the wire form of a firewall zone.
type FirewallZone struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	NetworkIDs []string `json:"networkIds"`
}

// Ref is a bare object reference.
type Ref struct {
	ID string `json:"id"`
}

// Ordering is the ordered id list used by the ordering endpoints.
type Ordering struct {
	IDs []string `json:"ids"`
}

// ListFirewallPolicies returns one page of policies, order significant.
func (c *Client) ListFirewallPolicies(ctx context.Context, siteID string, offset int64, limit int32) (Page[FirewallPolicy], error) {
	return get[Page[FirewallPolicy]](ctx, c, sitePath(siteID, "firewall/policies"), pageQuery(offset, limit))
}

// GetFirewallPolicy fetches one policy.
func (c *Client) GetFirewallPolicy(ctx context.Context, siteID, id string) (FirewallPolicy, error) {
	return get[FirewallPolicy](ctx, c, sitePath(siteID, "firewall/policies/"+url.PathEscape(id)), nil)
}

// CreateFirewallPolicy creates a policy.
func (c *Client) CreateFirewallPolicy(ctx context.Context, siteID string, body map[string]any) (FirewallPolicy, error) {
	return post[FirewallPolicy](ctx, c, sitePath(siteID, "firewall/policies"), body)
}

// UpdateFirewallPolicy replaces a policy.
func (c *Client) UpdateFirewallPolicy(ctx context.Context, siteID, id string, body map[string]any) (FirewallPolicy, error) {
	return put[FirewallPolicy](ctx, c, sitePath(siteID, "firewall/policies/"+url.PathEscape(id)), body)
}

// PatchFirewallPolicy partially updates a policy.
func (c *Client) PatchFirewallPolicy(ctx context.Context, siteID, id string, body map[string]any) (FirewallPolicy, error) {
	return patch[FirewallPolicy](ctx, c, sitePath(siteID, "firewall/policies/"+url.PathEscape(id)), body)
}

// DeleteFirewallPolicy removes a policy.
func (c *Client) DeleteFirewallPolicy(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "firewall/policies/"+url.PathEscape(id)))
}

// GetFirewallPolicyOrdering fetches the evaluation order.
func (c *Client) GetFirewallPolicyOrdering(ctx context.Context, siteID string) (Ordering, error) {
	return get[Ordering](ctx, c, sitePath(siteID, "firewall/policies/ordering"), nil)
}

// SetFirewallPolicyOrdering replaces the evaluation order.
func (c *Client) SetFirewallPolicyOrdering(ctx context.Context, siteID string, ids []string) error {
	_, err := put[Ordering](ctx, c, sitePath(siteID, "firewall/policies/ordering"), Ordering{IDs: ids})
	return err
}

// ListFirewallZones returns one page of zones.
func (c *Client) ListFirewallZones(ctx context.Context, siteID string, offset int64, limit int32) (Page[FirewallZone], error) {
	return get[Page[FirewallZone]](ctx, c, sitePath(siteID, "firewall/zones"), pageQuery(offset, limit))
}

// GetFirewallZone fetches one zone.
func (c *Client) GetFirewallZone(ctx context.Context, siteID, id string) (FirewallZone, error) {
	return get[FirewallZone](ctx, c, sitePath(siteID, "firewall/zones/"+url.PathEscape(id)), nil)
}

// CreateFirewallZone creates a zone.
func (c *Client) CreateFirewallZone(ctx context.Context, siteID string, body map[string]any) (FirewallZone, error) {
	return post[FirewallZone](ctx, c, sitePath(siteID, "firewall/zones"), body)
}

// UpdateFirewallZone replaces a zone.
func (c *Client) UpdateFirewallZone(ctx context.Context, siteID, id string, body map[string]any) (FirewallZone, error) {
	return put[FirewallZone](ctx, c, sitePath(siteID, "firewall/zones/"+url.PathEscape(id)), body)
}

// DeleteFirewallZone removes a zone.
func (c *Client) DeleteFirewallZone(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "firewall/zones/"+url.PathEscape(id)))
}
