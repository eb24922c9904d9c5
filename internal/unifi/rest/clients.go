// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
	"time"
)

// ClientAction is a station-level action, transmitted literally.
type ClientAction string

const (
	ActionBlock     ClientAction = "BLOCK"
	ActionUnblock   ClientAction = "UNBLOCK"
	ActionReconnect ClientAction = "RECONNECT"
)

// NetworkClient is the wire form of a connected station.
type NetworkClient struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	MacAddress  string     `json:"macAddress"`
	IPAddress   string     `json:"ipAddress"`
	Type        string     `json:"type"` // WIRED, WIRELESS, VPN, TELEPORT
	ConnectedAt *time.Time `json:"connectedAt"`
	UplinkID    string     `json:"uplinkDeviceId"`
	Access      *struct {
		Type string `json:"type"` // DEFAULT, BLOCKED
	} `json:"access"`
}

// ListClients returns one page of connected clients.
func (c *Client) ListClients(ctx context.Context, siteID string, offset int64, limit int32) (Page[NetworkClient], error) {
	return get[Page[NetworkClient]](ctx, c, sitePath(siteID, "clients"), pageQuery(offset, limit))
}

// ClientActionRequest triggers a client action.
func (c *Client) ClientActionRequest(ctx context.Context, siteID, clientID string, action ClientAction) error {
	body := map[string]string{"action": string(action)}
	return c.do(ctx, "POST", sitePath(siteID, "clients/"+url.PathEscape(clientID)+"/actions"), nil, body, nil)
}
