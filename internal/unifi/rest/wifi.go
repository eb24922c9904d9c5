// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
)

// WifiBroadcast is the wire form of an SSID. The passphrase is write-only:
// reads never include it.
type WifiBroadcast struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Enabled      *bool    `json:"enabled"`
	Type         string   `json:"type"`
	SecurityMode string   `json:"securityMode"`
	Passphrase   string   `json:"passphrase,omitempty"`
	NetworkID    string   `json:"networkId"`
	Frequencies  []string `json:"wifiBandFrequenciesGHz"`
	Hidden       *bool    `json:"hideSsidEnabled"`
	BandSteering *bool    `json:"bandSteeringEnabled"`
}

// ListWifiBroadcasts returns one page of SSIDs.
func (c *Client) ListWifiBroadcasts(ctx context.Context, siteID string, offset int64, limit int32) (Page[WifiBroadcast], error) {
	return get[Page[WifiBroadcast]](ctx, c, sitePath(siteID, "wifi/broadcasts"), pageQuery(offset, limit))
}

// GetWifiBroadcast fetches one SSID.
func (c *Client) GetWifiBroadcast(ctx context.Context, siteID, id string) (WifiBroadcast, error) {
	return get[WifiBroadcast](ctx, c, sitePath(siteID, "wifi/broadcasts/"+url.PathEscape(id)), nil)
}

// CreateWifiBroadcast creates an SSID.
func (c *Client) CreateWifiBroadcast(ctx context.Context, siteID string, body map[string]any) (WifiBroadcast, error) {
	return post[WifiBroadcast](ctx, c, sitePath(siteID, "wifi/broadcasts"), body)
}

// UpdateWifiBroadcast replaces an SSID definition.
func (c *Client) UpdateWifiBroadcast(ctx context.Context, siteID, id string, body map[string]any) (WifiBroadcast, error) {
	return put[WifiBroadcast](ctx, c, sitePath(siteID, "wifi/broadcasts/"+url.PathEscape(id)), body)
}

// DeleteWifiBroadcast removes an SSID.
func (c *Client) DeleteWifiBroadcast(ctx context.Context, siteID, id string) error {
	return c.delete(ctx, sitePath(siteID, "wifi/broadcasts/"+url.PathEscape(id)))
}
