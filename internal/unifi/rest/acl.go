// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
)

// AclRule is the wire form of an ACL rule.
type AclRule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled *bool  `json:"enabled"`
	Type    string `json:"type"`   // IP, MAC
	Action  string `json:"action"` // ALLOW, BLOCK
	Index   int    `json:"index"`
}

// ListAclRules returns one page of ACL rules, order significant.
func (c *Client) ListAclRules(ctx context.Context, siteID string, offset int64, limit int32) (Page[AclRule], error) {
	return get[Page[AclRule]](ctx, c, sitePath(siteID, "acl-rules"), pageQuery(offset, limit))
}

// GetAclRule fetches one rule.
func (c *Client) GetAclRule(ctx context.Context, siteID, id string) (AclRule, error) {
	return get[AclRule](ctx, c, sitePath(siteID, "acl-rules/"+url.PathEscape(id)), nil)
}

// CreateAclRule creates a rule.
func (c *Client) CreateAclRule(ctx context.Context, siteID string, body map[string]any) (AclRule, error) {
	return post[AclRule](ctx, c, sitePath(siteID, "acl-rules"), body)
}

// UpdateAclRule replaces a rule.
func (c *Client) UpdateAclRule(ctx context.Context, siteID, id string, body map[string]any) (AclRule, error) {
	return put[AclRule](ctx, c, sitePath(siteID, "acl-rules/"+url.PathEscape(id)), body)
}

// DeleteAclRule removes a rule.
func (c *Client) DeleteAclRule(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "acl-rules/"+url.PathEscape(id)))
}

// GetAclRuleOrdering fetches the evaluation order.
func (c *Client) GetAclRuleOrdering(ctx context.Context, siteID string) (Ordering, error) {
	return get[Ordering](ctx, c, sitePath(siteID, "acl-rules/ordering"), nil)
}

// SetAclRuleOrdering replaces the evaluation order.
func (c *Client) SetAclRuleOrdering(ctx context.Context, siteID string, ids []string) error {
	_, err := put[Ordering](ctx, c, sitePath(siteID, "acl-rules/ordering"), Ordering{IDs: ids})
	return err
}
