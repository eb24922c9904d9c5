// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package convert

import (
	"encoding/json"
	"time"

	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
)

// LegacyDevice maps a legacy device record onto the canonical form. The
// stats sections travel separately through LegacyDeviceStats.
func LegacyDevice(rec legacy.DeviceRecord, now time.Time) (domain.Device, error) {
	mac, err := domain.ParseMac(rec.Mac)
	if err != nil {
		return domain.Device{}, err
	}
	d := domain.Device{
		Meta: domain.Meta{
			ID:        domain.LegacyID(rec.ID),
			Source:    domain.SourceLegacy,
			UpdatedAt: now,
		},
		Mac:               mac,
		Name:              rec.Name,
		Model:             rec.Model,
		Type:              DeviceTypeFromLegacy(rec.Type),
		State:             DeviceStateFromLegacy(rec.State),
		FirmwareUpdatable: domain.FromPtr(rec.Upgradable),
		ClientCount:       domain.FromPtr(rec.NumSta),
		Attributes:        rec.Raw,
	}
	if d.Name == "" {
		d.Name = rec.Model
	}
	if rec.IP != "" {
		d.IP = domain.Some(rec.IP)
	}
	if rec.Version != "" {
		d.FirmwareVersion = domain.Some(rec.Version)
	}
	d.Stats = legacyDeviceStats(rec)
	if rec.Type == "ugw" || rec.Type == "udm" || rec.Type == "uxg" {
		d.WanIPv6 = wanIPv6(rec.Raw)
	}
	return d, nil
}

// LegacyDeviceStats extracts the partial stats envelope from a legacy
// device record, for the merge path that fills fields the integration API
// does not carry.
func LegacyDeviceStats(rec legacy.DeviceRecord) (domain.StatsUpdate, error) {
	mac, err := domain.ParseMac(rec.Mac)
	if err != nil {
		return domain.StatsUpdate{}, err
	}
	up := domain.StatsUpdate{
		Mac:         mac,
		Stats:       legacyDeviceStats(rec),
		ClientCount: domain.FromPtr(rec.NumSta),
	}
	if rec.Uplink != nil && rec.Uplink.UplinkMac != "" {
		if m, err := domain.ParseMac(rec.Uplink.UplinkMac); err == nil {
			up.UplinkDeviceMac = domain.Some(m)
		}
	}
	if rec.Type == "ugw" || rec.Type == "udm" || rec.Type == "uxg" {
		up.WanIPv6 = wanIPv6(rec.Raw)
	}
	return up, nil
}

// legacyDeviceStats reads both stats shapes. sys_stats carries load and
// absolute memory; system-stats carries pre-computed cpu/mem percentages.
func legacyDeviceStats(rec legacy.DeviceRecord) domain.DeviceStats {
	var s domain.DeviceStats
	if ss := rec.SysStats; ss != nil {
		s.Load1 = numberOpt(ss.Loadavg1)
		s.Load5 = numberOpt(ss.Loadavg5)
		s.Load15 = numberOpt(ss.Loadavg15)
		if ss.MemUsed != nil && ss.MemTotal != nil && *ss.MemTotal > 0 {
			s.MemoryPercent = domain.Some(float64(*ss.MemUsed) / float64(*ss.MemTotal) * 100)
		}
	}
	if st := rec.SystemSt; st != nil {
		if f, err := st.CPU.Float64(); err == nil {
			s.CPUPercent = domain.Some(f)
		}
		if !s.MemoryPercent.IsSome() {
			if f, err := st.Mem.Float64(); err == nil {
				s.MemoryPercent = domain.Some(f)
			}
		}
	}
	s.UptimeSecs = domain.FromPtr(rec.Uptime)
	if ul := rec.Uplink; ul != nil && (ul.TxRateBps != nil || ul.RxRateBps != nil) {
		var bw domain.Bandwidth
		if ul.TxRateBps != nil {
			bw.TxBps = *ul.TxRateBps
		}
		if ul.RxRateBps != nil {
			bw.RxBps = *ul.RxRateBps
		}
		s.Uplink = domain.Some(bw)
	}
	return s
}

// LegacyClient maps a legacy station record.
func LegacyClient(rec legacy.StaRecord, now time.Time) (domain.Client, error) {
	mac, err := domain.ParseMac(rec.Mac)
	if err != nil {
		return domain.Client{}, err
	}
	c := domain.Client{
		Meta: domain.Meta{
			ID:        domain.LegacyID(rec.ID),
			Source:    domain.SourceLegacy,
			UpdatedAt: now,
		},
		Mac:     mac,
		Name:    rec.Name,
		VLAN:    domain.FromPtr(rec.Vlan),
		TxBytes: domain.FromPtr(rec.TxBytes),
		RxBytes: domain.FromPtr(rec.RxBytes),
	}
	if c.Name == "" {
		c.Name = rec.Hostname
	}
	if rec.IP != "" {
		c.IP = domain.Some(rec.IP)
	}
	if rec.Hostname != "" {
		c.Hostname = domain.Some(rec.Hostname)
	}
	if rec.Blocked != nil {
		c.Blocked = domain.Some(*rec.Blocked)
	}
	if rec.AssocTime != nil && *rec.AssocTime > 0 {
		c.ConnectedAt = domain.Some(time.Unix(*rec.AssocTime, 0).UTC())
	}
	if rec.TxBytesR != nil || rec.RxBytesR != nil {
		var bw domain.Bandwidth
		if rec.TxBytesR != nil {
			bw.TxBps = int64(*rec.TxBytesR)
		}
		if rec.RxBytesR != nil {
			bw.RxBps = int64(*rec.RxBytesR)
		}
		c.Bandwidth = domain.Some(bw)
	}

	if rec.IsWired {
		c.Type = domain.ClientWired
		c.UplinkDeviceMac = macOpt(rec.SwMac, rec.GwMac)
	} else {
		c.Type = domain.ClientWireless
		c.UplinkDeviceMac = macOpt(rec.ApMac)
		w := &domain.WirelessInfo{
			SSID:         rec.ESSID,
			Channel:      domain.FromPtr(rec.Channel),
			SignalDbm:    domain.FromPtr(rec.Signal),
			TxRateKbps:   domain.FromPtr(rec.TxRate),
			RxRateKbps:   domain.FromPtr(rec.RxRate),
			Satisfaction: domain.FromPtr(rec.Satisfaction),
		}
		if rec.BSSID != "" {
			if m, err := domain.ParseMac(rec.BSSID); err == nil {
				w.BSSID = domain.Some(m)
			}
		}
		if rec.Channel != nil {
			w.FreqGHz = domain.Some(BandFromChannel(*rec.Channel))
		}
		c.Wireless = w
	}

	if rec.IsGuest {
		g := &domain.GuestAuth{}
		if rec.Authorized != nil {
			g.Authorized = *rec.Authorized
		}
		if rec.GuestExpat != nil && *rec.GuestExpat > 0 {
			exp := time.Unix(*rec.GuestExpat, 0).UTC()
			g.ExpiresAt = domain.Some(exp)
			if left := exp.Sub(now); left > 0 {
				g.TimeLeft = domain.Some(left)
			}
		}
		c.Guest = g
	}
	return c, nil
}

// Health maps one legacy subsystem health record.
func Health(rec legacy.HealthRecord) domain.HealthSummary {
	h := domain.HealthSummary{
		Subsystem:  rec.Subsystem,
		Status:     rec.Status,
		NumDevices: domain.FromPtr(rec.NumAdopted),
		LatencyMs:  domain.FromPtr(rec.Latency),
	}
	if rec.NumUser != nil {
		total := *rec.NumUser
		if rec.NumGuest != nil {
			total += *rec.NumGuest
		}
		h.NumClients = domain.Some(total)
	}
	if rec.TxBytesR != nil {
		h.TxBps = domain.Some(int64(*rec.TxBytesR))
	}
	if rec.RxBytesR != nil {
		h.RxBps = domain.Some(int64(*rec.RxBytesR))
	}
	if rec.WanIP != "" {
		h.WanIP = domain.Some(rec.WanIP)
	}
	if rec.GwMac != "" {
		if m, err := domain.ParseMac(rec.GwMac); err == nil {
			h.GwMac = domain.Some(m)
		}
	}
	if rec.GwStats != nil {
		if f, err := rec.GwStats.CPU.Float64(); err == nil {
			h.GwCPU = domain.Some(f)
		}
		if f, err := rec.GwStats.Mem.Float64(); err == nil {
			h.GwMemory = domain.Some(f)
		}
	}
	return h
}

// LegacyEvent maps one event log entry.
func LegacyEvent(rec legacy.EventRecord) domain.Event {
	return legacyEvent(rec, false)
}

// Alarm maps one alarm entry; alarms rank at least warning.
func Alarm(rec legacy.AlarmRecord) domain.Event {
	return legacyEvent(rec.EventRecord, true)
}

func legacyEvent(rec legacy.EventRecord, alarm bool) domain.Event {
	e := domain.Event{
		ID:        rec.ID,
		Timestamp: time.UnixMilli(rec.TimeMs).UTC(),
		Category:  rec.Subsystem,
		Severity:  SeverityFromKey(rec.Key, alarm),
		EventType: rec.Key,
		Message:   rec.Message,
	}
	e.DeviceMac = macOpt(rec.Ap, rec.Sw, rec.Gw)
	e.ClientMac = macOpt(rec.User, rec.Guest)
	return e
}

// LegacySite maps one site record; the description is the display name.
func LegacySite(rec legacy.SiteRecord, now time.Time) domain.Site {
	display := rec.Desc
	if display == "" {
		display = rec.Name
	}
	return domain.Site{
		Meta: domain.Meta{
			ID:        domain.LegacyID(rec.ID),
			Source:    domain.SourceLegacy,
			UpdatedAt: now,
		},
		InternalName: rec.Name,
		DisplayName:  display,
	}
}

// macOpt returns the first candidate that parses as a MAC.
func macOpt(candidates ...string) domain.Opt[domain.MacAddress] {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if m, err := domain.ParseMac(c); err == nil {
			return domain.Some(m)
		}
	}
	return domain.None[domain.MacAddress]()
}

func numberOpt(n *json.Number) domain.Opt[float64] {
	if n == nil {
		return domain.None[float64]()
	}
	f, err := n.Float64()
	if err != nil {
		return domain.None[float64]()
	}
	return domain.Some(f)
}
