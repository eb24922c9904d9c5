// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

// Source records which API surface produced the most recent version of an
// entity.
type Source uint8

const (
	SourceREST Source = iota + 1
	SourceLegacy
)

func (s Source) String() string {
	switch s {
	case SourceREST:
		return "rest"
	case SourceLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// DeviceType classifies a network device by role.
type DeviceType string

const (
	DeviceGateway     DeviceType = "gateway"
	DeviceSwitch      DeviceType = "switch"
	DeviceAccessPoint DeviceType = "access_point"
	DeviceOther       DeviceType = "other"
)

// DeviceState is the adoption/provisioning state of a device.
type DeviceState string

const (
	StateOffline         DeviceState = "offline"
	StateOnline          DeviceState = "online"
	StatePendingAdoption DeviceState = "pending_adoption"
	StateAdopting        DeviceState = "adopting"
	StateUpdating        DeviceState = "updating"
	StateGettingReady    DeviceState = "getting_ready"
	StateProvisioning    DeviceState = "provisioning"
	StateHeartbeatMissed DeviceState = "heartbeat_missed"
	StateIsolated        DeviceState = "isolated"
	StateAdoptionFailed  DeviceState = "adoption_failed"
	DeviceStateUnknown   DeviceState = "unknown"
)

// ClientType classifies how a client is attached to the network.
type ClientType string

const (
	ClientWired    ClientType = "wired"
	ClientWireless ClientType = "wireless"
	ClientVPN      ClientType = "vpn"
	ClientTeleport ClientType = "teleport"
)

// EventSeverity orders events for display and filtering.
type EventSeverity uint8

const (
	SeverityInfo EventSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s EventSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// FirewallAction is a zone policy verdict.
type FirewallAction string

const (
	FirewallAllow  FirewallAction = "ALLOW"
	FirewallBlock  FirewallAction = "DROP"
	FirewallReject FirewallAction = "REJECT"
)

// AclAction is an ACL rule verdict.
type AclAction string

const (
	AclAllow AclAction = "ALLOW"
	AclBlock AclAction = "BLOCK"
)

// AclRuleType discriminates IP rules from MAC rules.
type AclRuleType string

const (
	AclRuleIP  AclRuleType = "IP"
	AclRuleMAC AclRuleType = "MAC"
)

// SecurityMode is a wifi broadcast security setting, transmitted literally.
type SecurityMode string

const (
	SecurityOpen              SecurityMode = "OPEN"
	SecurityWPA2Personal      SecurityMode = "WPA2_PERSONAL"
	SecurityWPA3Personal      SecurityMode = "WPA3_PERSONAL"
	SecurityWPA2WPA3Personal  SecurityMode = "WPA2_WPA3_PERSONAL"
	SecurityWPA2Enterprise    SecurityMode = "WPA2_ENTERPRISE"
	SecurityWPA3Enterprise    SecurityMode = "WPA3_ENTERPRISE"
	SecurityWPA2WPA3Ent       SecurityMode = "WPA2_WPA3_ENTERPRISE"
)

// DnsRecordType is a DNS policy record type, transmitted literally.
type DnsRecordType string

const (
	DnsA             DnsRecordType = "A"
	DnsAAAA          DnsRecordType = "AAAA"
	DnsCNAME         DnsRecordType = "CNAME"
	DnsMX            DnsRecordType = "MX"
	DnsTXT           DnsRecordType = "TXT"
	DnsSRV           DnsRecordType = "SRV"
	DnsForwardDomain DnsRecordType = "FORWARD_DOMAIN"
)

// FrequencyBand is a wifi radio band.
type FrequencyBand string

const (
	Band2GHz FrequencyBand = "2.4"
	Band5GHz FrequencyBand = "5"
	Band6GHz FrequencyBand = "6"
)

// ConnectionPhase is the coarse lifecycle phase of the runtime's link to the
// controller.
type ConnectionPhase uint8

const (
	PhaseDisconnected ConnectionPhase = iota
	PhaseConnecting
	PhaseConnected
	PhaseReconnecting
	PhaseFailed
)

func (p ConnectionPhase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// ConnectionState is the value published on the connection watch.
type ConnectionState struct {
	Phase   ConnectionPhase
	Attempt int    // reconnect attempt counter, when Phase is Reconnecting
	Reason  string // human-readable failure reason, when Phase is Failed
}
