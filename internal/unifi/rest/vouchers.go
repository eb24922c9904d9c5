// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
	"time"
)

// Voucher is the wire form of a hotspot voucher.
type Voucher struct {
	ID                   string     `json:"id"`
	Code                 string     `json:"code"`
	Name                 string     `json:"name"`
	CreatedAt            time.Time  `json:"createdAt"`
	ExpiresAt            *time.Time `json:"expiresAt"`
	TimeLimitMinutes     *int       `json:"timeLimitMinutes"`
	DataUsageLimitMBytes *int64     `json:"dataUsageLimitMBytes"`
	TxRateLimitKbps      *int64     `json:"txRateLimitKbps"`
	RxRateLimitKbps      *int64     `json:"rxRateLimitKbps"`
	AuthorizedGuestLimit *int       `json:"authorizedGuestLimit"`
}

// ListVouchers returns one page of vouchers.
func (c *Client) ListVouchers(ctx context.Context, siteID string, offset int64, limit int32) (Page[Voucher], error) {
	return get[Page[Voucher]](ctx, c, sitePath(siteID, "hotspot/vouchers"), pageQuery(offset, limit))
}

// CreateVouchers generates vouchers; the server returns the created batch.
func (c *Client) CreateVouchers(ctx context.Context, siteID string, body map[string]any) ([]Voucher, error) {
	page, err := post[Page[Voucher]](ctx, c, sitePath(siteID, "hotspot/vouchers"), body)
	return page.Data, err
}

// DeleteVoucher revokes one voucher.
func (c *Client) DeleteVoucher(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "hotspot/vouchers/"+url.PathEscape(id)))
}
