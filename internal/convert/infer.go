// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package convert maps the wire shapes of the integration API, the legacy
// session API and the push stream onto the canonical domain entities. All
// conversion is pure; callers decide what to do with rejects.
package convert

import (
	"strings"

	"github.com/ManuGH/unictl/internal/domain"
)

// gatewayModelPrefixes covers the console and gateway lines whose feature
// list does not always advertise "gateway".
var gatewayModelPrefixes = []string{
	"UDM", "UDR", "UDW", "UXG", "USG", "UCG", "EFG", "UNVR",
}

// DeviceTypeFromFeatures classifies an integration-API device. A switch that
// also routes is treated as the gateway it effectively is.
func DeviceTypeFromFeatures(model string, features []string) domain.DeviceType {
	has := func(f string) bool {
		for _, v := range features {
			if strings.EqualFold(v, f) {
				return true
			}
		}
		return false
	}
	upper := strings.ToUpper(model)
	for _, p := range gatewayModelPrefixes {
		if strings.HasPrefix(upper, p) {
			return domain.DeviceGateway
		}
	}
	switch {
	case has("switching") && has("routing"):
		return domain.DeviceGateway
	case has("gateway"):
		return domain.DeviceGateway
	case has("accessPoint"):
		return domain.DeviceAccessPoint
	case has("switching"):
		return domain.DeviceSwitch
	default:
		return domain.DeviceOther
	}
}

// DeviceTypeFromLegacy classifies a legacy device record by its type token.
func DeviceTypeFromLegacy(typ string) domain.DeviceType {
	switch typ {
	case "ugw", "udm", "uxg", "uck":
		return domain.DeviceGateway
	case "usw":
		return domain.DeviceSwitch
	case "uap":
		return domain.DeviceAccessPoint
	default:
		return domain.DeviceOther
	}
}

// DeviceStateFromREST maps the integration-API state token.
func DeviceStateFromREST(s string) domain.DeviceState {
	switch s {
	case "ONLINE":
		return domain.StateOnline
	case "OFFLINE":
		return domain.StateOffline
	case "PENDING_ADOPTION":
		return domain.StatePendingAdoption
	case "ADOPTING":
		return domain.StateAdopting
	case "UPDATING":
		return domain.StateUpdating
	case "GETTING_READY":
		return domain.StateGettingReady
	case "PROVISIONING":
		return domain.StateProvisioning
	case "HEARTBEAT_MISSED":
		return domain.StateHeartbeatMissed
	case "ISOLATED":
		return domain.StateIsolated
	case "ADOPTION_FAILED":
		return domain.StateAdoptionFailed
	default:
		return domain.DeviceStateUnknown
	}
}

// DeviceStateFromLegacy maps the numeric state code of the legacy API.
func DeviceStateFromLegacy(code int) domain.DeviceState {
	switch code {
	case 0:
		return domain.StateOffline
	case 1:
		return domain.StateOnline
	case 2:
		return domain.StatePendingAdoption
	case 4:
		return domain.StateUpdating
	case 5:
		return domain.StateGettingReady
	case 6:
		return domain.StateHeartbeatMissed
	case 7:
		return domain.StateAdopting
	case 9:
		return domain.StateAdoptionFailed
	case 11:
		return domain.StateIsolated
	default:
		return domain.DeviceStateUnknown
	}
}

// BandFromChannel infers the radio band from a channel number. The 5 GHz
// UNII ranges and the 6 GHz PSC plan overlap numerically; the split below
// follows the channel plans the firmware actually emits.
func BandFromChannel(ch int) domain.FrequencyBand {
	switch {
	case ch >= 1 && ch <= 14:
		return domain.Band2GHz
	case ch >= 32 && ch <= 68, ch >= 96 && ch <= 177:
		return domain.Band5GHz
	default:
		return domain.Band6GHz
	}
}

// BandFromGHz maps a radio frequency in GHz onto a band.
func BandFromGHz(f float64) domain.FrequencyBand {
	switch {
	case f < 3:
		return domain.Band2GHz
	case f < 5.9:
		return domain.Band5GHz
	default:
		return domain.Band6GHz
	}
}

// SeverityFromKey derives an event severity from the event key. Alarms are
// never below warning regardless of key.
func SeverityFromKey(key string, alarm bool) domain.EventSeverity {
	upper := strings.ToUpper(key)
	sev := domain.SeverityInfo
	switch {
	case strings.Contains(upper, "ERROR"), strings.Contains(upper, "FAIL"):
		sev = domain.SeverityError
	case strings.Contains(upper, "DISCONNECT"), strings.Contains(upper, "LOST"), strings.Contains(upper, "DOWN"):
		sev = domain.SeverityWarning
	}
	if alarm && sev < domain.SeverityWarning {
		sev = domain.SeverityWarning
	}
	return sev
}

// selectIPv6 picks one address from the shapes gateway firmware attaches to
// a WAN section: a bare string, a CIDR string, a list of either, or a list
// of {"addr": ...} objects. Global addresses win over link-local.
func selectIPv6(v any) domain.Opt[string] {
	var candidates []string
	collect := func(item any) {
		switch t := item.(type) {
		case string:
			if t != "" {
				candidates = append(candidates, t)
			}
		case map[string]any:
			for _, k := range []string{"addr", "address", "ip"} {
				if s, ok := t[k].(string); ok && s != "" {
					candidates = append(candidates, s)
					break
				}
			}
		}
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collect(item)
		}
	default:
		collect(v)
	}

	var linkLocal string
	for _, c := range candidates {
		addr := c
		if i := strings.IndexByte(addr, '/'); i >= 0 {
			addr = addr[:i]
		}
		if strings.HasPrefix(strings.ToLower(addr), "fe80:") {
			if linkLocal == "" {
				linkLocal = addr
			}
			continue
		}
		return domain.Some(addr)
	}
	if linkLocal != "" {
		return domain.Some(linkLocal)
	}
	return domain.None[string]()
}

// wanIPv6 digs the IPv6 address out of a raw gateway record. Firmware lines
// attach it either at the top level or inside the wan1/wan2 sections.
func wanIPv6(raw map[string]any) domain.Opt[string] {
	if raw == nil {
		return domain.None[string]()
	}
	for _, key := range []string{"wan1", "wan2"} {
		if wan, ok := raw[key].(map[string]any); ok {
			if got := selectIPv6(wan["ipv6"]); got.IsSome() {
				return got
			}
		}
	}
	return selectIPv6(raw["ipv6"])
}

// restID maps an integration-API identifier. Non-UUID ids (the firmware
// occasionally emits internal ids here) fall back to the legacy namespace.
func restID(s string) domain.EntityID {
	if s == "" {
		return domain.EntityID{}
	}
	if id, err := domain.ParseUUID(s); err == nil {
		return id
	}
	return domain.LegacyID(s)
}
