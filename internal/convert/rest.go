// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package convert

import (
	"time"

	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/unifi/rest"
)

// Device maps an integration-API device list record.
func Device(w rest.Device, now time.Time) (domain.Device, error) {
	mac, err := domain.ParseMac(w.MacAddress)
	if err != nil {
		return domain.Device{}, err
	}
	d := domain.Device{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Mac:               mac,
		Name:              w.Name,
		Model:             w.Model,
		Type:              DeviceTypeFromFeatures(w.Model, w.Features),
		State:             DeviceStateFromREST(w.State),
		FirmwareUpdatable: domain.FromPtr(w.FirmwareUpdatable),
		Features:          w.Features,
		Attributes:        w.Attributes,
	}
	if w.IPAddress != "" {
		d.IP = domain.Some(w.IPAddress)
	}
	if w.FirmwareVersion != "" {
		d.FirmwareVersion = domain.Some(w.FirmwareVersion)
	}
	return d, nil
}

// DeviceDetails maps the device detail record, including ports and radios.
func DeviceDetails(w rest.DeviceDetails, now time.Time) (domain.Device, error) {
	d, err := Device(w.Device, now)
	if err != nil {
		return domain.Device{}, err
	}
	for _, p := range w.Interfaces.Ports {
		d.Ports = append(d.Ports, domain.Port{
			Index:     p.Idx,
			Name:      p.Name,
			Connector: p.Connector,
			Enabled:   domain.FromPtr(p.Enabled),
			SpeedMbps: domain.FromPtr(p.SpeedMbps),
			PoE:       domain.FromPtr(p.PoE),
			Up:        domain.FromPtr(p.Up),
		})
	}
	for _, r := range w.Interfaces.Radios {
		d.Radios = append(d.Radios, domain.Radio{
			Band:        BandFromGHz(r.FrequencyGHz),
			Channel:     domain.FromPtr(r.Channel),
			WidthMHz:    domain.FromPtr(r.WidthMHz),
			TxPowerMode: r.TxPowerMode,
		})
	}
	return d, nil
}

// DeviceStats maps the statistics/latest record onto the partial stats form.
func DeviceStats(w rest.DeviceStatistics) domain.DeviceStats {
	s := domain.DeviceStats{
		CPUPercent:    domain.FromPtr(w.CPUUtilizationPct),
		MemoryPercent: domain.FromPtr(w.MemoryUtilizationPct),
		Load1:         domain.FromPtr(w.LoadAverage1Min),
		Load5:         domain.FromPtr(w.LoadAverage5Min),
		Load15:        domain.FromPtr(w.LoadAverage15Min),
		UptimeSecs:    domain.FromPtr(w.UptimeSec),
	}
	if w.Uplink != nil {
		var bw domain.Bandwidth
		if w.Uplink.TxRateBps != nil {
			bw.TxBps = *w.Uplink.TxRateBps
		}
		if w.Uplink.RxRateBps != nil {
			bw.RxBps = *w.Uplink.RxRateBps
		}
		s.Uplink = domain.Some(bw)
	}
	return s
}

// Client maps an integration-API station record. resolve translates the
// uplink device id into a MAC using whatever the caller knows; nil is fine.
func Client(w rest.NetworkClient, now time.Time, resolve func(deviceID string) (domain.MacAddress, bool)) (domain.Client, error) {
	mac, err := domain.ParseMac(w.MacAddress)
	if err != nil {
		return domain.Client{}, err
	}
	c := domain.Client{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Mac:  mac,
		Name: w.Name,
		Type: clientTypeFromREST(w.Type),
	}
	if w.IPAddress != "" {
		c.IP = domain.Some(w.IPAddress)
	}
	if w.ConnectedAt != nil {
		c.ConnectedAt = domain.Some(*w.ConnectedAt)
	}
	if w.UplinkID != "" {
		if up, err := domain.ParseMac(w.UplinkID); err == nil {
			c.UplinkDeviceMac = domain.Some(up)
		} else if resolve != nil {
			if up, ok := resolve(w.UplinkID); ok {
				c.UplinkDeviceMac = domain.Some(up)
			}
		}
	}
	if w.Access != nil {
		c.Blocked = domain.Some(w.Access.Type == "BLOCKED")
	}
	return c, nil
}

func clientTypeFromREST(t string) domain.ClientType {
	switch t {
	case "WIRED":
		return domain.ClientWired
	case "WIRELESS":
		return domain.ClientWireless
	case "VPN":
		return domain.ClientVPN
	case "TELEPORT":
		return domain.ClientTeleport
	default:
		return domain.ClientWired
	}
}

// Network maps an integration-API network record. List records carry a
// subset; absent sections stay nil.
func Network(w rest.Network, now time.Time) domain.Network {
	n := domain.Network{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Name:           w.Name,
		Enabled:        w.Enabled == nil || *w.Enabled,
		VlanID:         domain.FromPtr(w.VlanID),
		Isolation:      domain.FromPtr(w.Isolation),
		InternetAccess: domain.FromPtr(w.InternetAccess),
		MdnsForwarding: domain.FromPtr(w.MdnsForwarding),
		CellularBackup: domain.FromPtr(w.CellularBackup),
		Attributes:     w.Attributes,
	}
	if w.Subnet != "" {
		n.Subnet = domain.Some(w.Subnet)
	}
	if w.GatewayIP != "" {
		n.GatewayIP = domain.Some(w.GatewayIP)
	}
	if w.Zone != nil && w.Zone.ID != "" {
		n.FirewallZoneID = domain.Some(w.Zone.ID)
	}
	if w.DHCP != nil {
		dhcp := &domain.DhcpConfig{
			Enabled:   w.DHCP.Enabled,
			LeaseSecs: domain.FromPtr(w.DHCP.LeaseTimeSecs),
			DNS:       w.DHCP.DNSServers,
		}
		if w.DHCP.RangeStart != "" {
			dhcp.RangeStart = domain.Some(w.DHCP.RangeStart)
		}
		if w.DHCP.RangeStop != "" {
			dhcp.RangeStop = domain.Some(w.DHCP.RangeStop)
		}
		n.DHCP = dhcp
	}
	if w.IPv6 != nil {
		v6 := &domain.IPv6Config{
			Mode:   w.IPv6.Mode,
			SLAAC:  domain.FromPtr(w.IPv6.SLAAC),
			DHCPv6: domain.FromPtr(w.IPv6.DHCPv6),
		}
		if w.IPv6.Prefix != "" {
			v6.Prefix = domain.Some(w.IPv6.Prefix)
		}
		n.IPv6 = v6
	}
	return n
}

// WifiBroadcast maps an SSID record. The passphrase never arrives on reads.
func WifiBroadcast(w rest.WifiBroadcast, now time.Time) domain.WifiBroadcast {
	b := domain.WifiBroadcast{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Name:         w.Name,
		Enabled:      w.Enabled == nil || *w.Enabled,
		Type:         w.Type,
		Security:     domain.SecurityMode(w.SecurityMode),
		Hidden:       domain.FromPtr(w.Hidden),
		BandSteering: domain.FromPtr(w.BandSteering),
	}
	if w.NetworkID != "" {
		b.NetworkID = domain.Some(w.NetworkID)
	}
	for _, f := range w.Frequencies {
		b.Frequencies = append(b.Frequencies, domain.FrequencyBand(f))
	}
	return b
}

// FirewallPolicy maps a zone policy record.
func FirewallPolicy(w rest.FirewallPolicy, now time.Time) domain.FirewallPolicy {
	p := domain.FirewallPolicy{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Name:           w.Name,
		Enabled:        w.Enabled == nil || *w.Enabled,
		Action:         domain.FirewallAction(w.Action),
		LoggingEnabled: domain.FromPtr(w.LoggingEnabled),
		Index:          w.Index,
	}
	if w.SourceZone != nil && w.SourceZone.ID != "" {
		p.SourceZoneID = domain.Some(w.SourceZone.ID)
	}
	if w.DestinationZone != nil && w.DestinationZone.ID != "" {
		p.DestinationZoneID = domain.Some(w.DestinationZone.ID)
	}
	if w.Protocol != "" {
		p.Protocol = domain.Some(w.Protocol)
	}
	return p
}

// FirewallZone maps a firewall zone record.
func FirewallZone(w rest.FirewallZone, now time.Time) domain.FirewallZone {
	return domain.FirewallZone{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Name:       w.Name,
		NetworkIDs: w.NetworkIDs,
	}
}

// AclRule maps an ACL rule record.
func AclRule(w rest.AclRule, now time.Time) domain.AclRule {
	return domain.AclRule{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Name:     w.Name,
		Enabled:  w.Enabled == nil || *w.Enabled,
		RuleType: domain.AclRuleType(w.Type),
		Action:   domain.AclAction(w.Action),
		Index:    w.Index,
	}
}

// DnsPolicy maps a DNS policy record.
func DnsPolicy(w rest.DnsPolicy, now time.Time) domain.DnsPolicy {
	return domain.DnsPolicy{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Type:     domain.DnsRecordType(w.Type),
		Domain:   w.Domain,
		Value:    w.Value,
		Enabled:  w.Enabled == nil || *w.Enabled,
		TTL:      domain.FromPtr(w.TTL),
		Priority: domain.FromPtr(w.Priority),
	}
}

// Voucher maps a hotspot voucher record.
func Voucher(w rest.Voucher, now time.Time) domain.Voucher {
	v := domain.Voucher{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Code:             w.Code,
		Name:             w.Name,
		CreatedAt:        w.CreatedAt,
		TimeLimitMins:    domain.FromPtr(w.TimeLimitMinutes),
		DataLimitMB:      domain.FromPtr(w.DataUsageLimitMBytes),
		TxRateLimitKbps:  domain.FromPtr(w.TxRateLimitKbps),
		RxRateLimitKbps:  domain.FromPtr(w.RxRateLimitKbps),
		AuthorizedGuests: domain.FromPtr(w.AuthorizedGuestLimit),
	}
	if w.ExpiresAt != nil {
		v.ExpiresAt = domain.Some(*w.ExpiresAt)
	}
	return v
}

// TrafficMatchingList maps a traffic classifier record.
func TrafficMatchingList(w rest.TrafficMatchingList, now time.Time) domain.TrafficMatchingList {
	l := domain.TrafficMatchingList{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		Name:      w.Name,
		MatchType: w.MatchType,
		Entries:   w.Entries,
	}
	if w.Description != "" {
		l.Description = domain.Some(w.Description)
	}
	return l
}

// Site maps an integration-API site record. The display name prefers the
// human-readable name over the internal slug.
func Site(w rest.Site, now time.Time) domain.Site {
	display := w.Name
	if display == "" {
		display = w.InternalReference
	}
	return domain.Site{
		Meta: domain.Meta{
			ID:        restID(w.ID),
			Source:    domain.SourceREST,
			UpdatedAt: now,
		},
		InternalName: w.InternalReference,
		DisplayName:  display,
	}
}
