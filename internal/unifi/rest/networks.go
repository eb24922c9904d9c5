// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"encoding/json"
	"net/url"
)

// Network is the wire form of an L3 network. The list endpoint returns a
// reduced record; GetNetwork recovers the full shape. Attributes preserves
// everything the firmware sent.
type Network struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Enabled   *bool  `json:"enabled"`
	VlanID    *int   `json:"vlanId"`
	Subnet    string `json:"subnet"`
	GatewayIP string `json:"gatewayIp"`
	Zone      *struct {
		ID string `json:"id"`
	} `json:"zone"`
	DHCP *struct {
		Enabled       bool     `json:"enabled"`
		RangeStart    string   `json:"rangeStart"`
		RangeStop     string   `json:"rangeStop"`
		LeaseTimeSecs *int     `json:"leaseTimeSeconds"`
		DNSServers    []string `json:"dnsServers"`
	} `json:"dhcp"`
	IPv6 *struct {
		Mode   string `json:"mode"`
		Prefix string `json:"prefix"`
		SLAAC  *bool  `json:"slaacEnabled"`
		DHCPv6 *bool  `json:"dhcpv6Enabled"`
	} `json:"ipv6"`
	Isolation      *bool `json:"isolationEnabled"`
	InternetAccess *bool `json:"internetAccessEnabled"`
	MdnsForwarding *bool `json:"mdnsForwardingEnabled"`
	CellularBackup *bool `json:"cellularBackupEnabled"`

	Attributes map[string]any `json:"-"`
}

func (n *Network) UnmarshalJSON(b []byte) error {
	type alias Network
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	a.Attributes = raw
	*n = Network(a)
	return nil
}

// NetworkReference is one cross-reference from networks/{id}/references.
type NetworkReference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListNetworks returns one page of networks (reduced records).
func (c *Client) ListNetworks(ctx context.Context, siteID string, offset int64, limit int32) (Page[Network], error) {
	return get[Page[Network]](ctx, c, sitePath(siteID, "networks"), pageQuery(offset, limit))
}

// GetNetwork fetches one network with all detail fields.
func (c *Client) GetNetwork(ctx context.Context, siteID, networkID string) (Network, error) {
	return get[Network](ctx, c, sitePath(siteID, "networks/"+url.PathEscape(networkID)), nil)
}

// CreateNetwork creates a network and returns the server's representation.
func (c *Client) CreateNetwork(ctx context.Context, siteID string, body map[string]any) (Network, error) {
	return post[Network](ctx, c, sitePath(siteID, "networks"), body)
}

// UpdateNetwork replaces a network definition.
func (c *Client) UpdateNetwork(ctx context.Context, siteID, networkID string, body map[string]any) (Network, error) {
	return put[Network](ctx, c, sitePath(siteID, "networks/"+url.PathEscape(networkID)), body)
}

// DeleteNetwork removes a network.
func (c *Client) DeleteNetwork(ctx context.Context, siteID, networkID string) error {
	return c.delete(ctx, sitePath(siteID, "networks/"+url.PathEscape(networkID)))
}

// NetworkReferences lists the objects referencing a network.
func (c *Client) NetworkReferences(ctx context.Context, siteID, networkID string) ([]NetworkReference, error) {
	page, err := get[Page[NetworkReference]](ctx, c, sitePath(siteID, "networks/"+url.PathEscape(networkID)+"/references"), nil)
	return page.Data, err
}
