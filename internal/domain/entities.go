// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import "time"

// Meta is the header every entity carries.
type Meta struct {
	ID        EntityID
	Source    Source
	UpdatedAt time.Time
}

// Key returns the identifier value entities are keyed on.
func (m Meta) Key() string {
	return m.ID.Value
}

// Port is a switch/gateway port as reported by the device detail endpoint.
type Port struct {
	Index     int
	Name      string
	Connector string
	Enabled   Opt[bool]
	SpeedMbps Opt[int]
	PoE       Opt[bool]
	Up        Opt[bool]
}

// Radio is a wifi radio on an access point.
type Radio struct {
	Band        FrequencyBand
	Channel     Opt[int]
	WidthMHz    Opt[int]
	TxPowerMode string
}

// Device is an adopted (or adoptable) network device, keyed by MAC.
type Device struct {
	Meta
	Mac               MacAddress
	IP                Opt[string]
	WanIPv6           Opt[string]
	Name              string
	Model             string
	Type              DeviceType
	State             DeviceState
	FirmwareVersion   Opt[string]
	FirmwareUpdatable Opt[bool]
	Features          []string
	Ports             []Port
	Radios            []Radio
	Stats             DeviceStats
	ClientCount       Opt[int]
	UplinkDeviceMac   Opt[MacAddress]
	Attributes        map[string]any // opaque wire fields preserved through updates
}

// WirelessInfo is the radio association detail of a wireless client.
type WirelessInfo struct {
	SSID         string
	BSSID        Opt[MacAddress]
	Channel      Opt[int]
	FreqGHz      Opt[FrequencyBand]
	SignalDbm    Opt[int]
	TxRateKbps   Opt[int64]
	RxRateKbps   Opt[int64]
	Satisfaction Opt[int]
}

// GuestAuth is the hotspot authorization state of a guest client.
type GuestAuth struct {
	Authorized bool
	ExpiresAt  Opt[time.Time]
	TimeLeft   Opt[time.Duration]
	DataUsedMB Opt[int64]
}

// Client is a station attached to the network, keyed by MAC.
type Client struct {
	Meta
	Mac             MacAddress
	IP              Opt[string]
	Name            string
	Hostname        Opt[string]
	Type            ClientType
	ConnectedAt     Opt[time.Time]
	UplinkDeviceMac Opt[MacAddress]
	VLAN            Opt[int]
	Wireless        *WirelessInfo
	Guest           *GuestAuth
	Bandwidth       Opt[Bandwidth]
	TxBytes         Opt[int64]
	RxBytes         Opt[int64]
	Blocked         Opt[bool]
}

// DhcpConfig is the DHCP service section of a network.
type DhcpConfig struct {
	Enabled    bool
	RangeStart Opt[string]
	RangeStop  Opt[string]
	LeaseSecs  Opt[int]
	DNS        []string
}

// IPv6Config is the IPv6 section of a network.
type IPv6Config struct {
	Mode   string
	Prefix Opt[string]
	SLAAC  Opt[bool]
	DHCPv6 Opt[bool]
}

// Network is an L3 network / VLAN definition.
type Network struct {
	Meta
	Name           string
	Enabled        bool
	VlanID         Opt[int]
	Subnet         Opt[string]
	GatewayIP      Opt[string]
	DHCP           *DhcpConfig
	IPv6           *IPv6Config
	FirewallZoneID Opt[string] // opaque UUID; referent may dangle
	Isolation      Opt[bool]
	InternetAccess Opt[bool]
	MdnsForwarding Opt[bool]
	CellularBackup Opt[bool]
	Attributes     map[string]any
}

// WifiBroadcast is an SSID definition.
type WifiBroadcast struct {
	Meta
	Name         string
	Enabled      bool
	Type         string
	Security     SecurityMode
	Passphrase   string // write-only: populated for outbound writes, never from reads
	NetworkID    Opt[string]
	Frequencies  []FrequencyBand
	Hidden       Opt[bool]
	BandSteering Opt[bool]
}

// FirewallPolicy is a zone-to-zone policy; Index orders evaluation.
type FirewallPolicy struct {
	Meta
	Name              string
	Enabled           bool
	Action            FirewallAction
	SourceZoneID      Opt[string]
	DestinationZoneID Opt[string]
	Protocol          Opt[string]
	LoggingEnabled    Opt[bool]
	Index             int
}

// FirewallZone groups networks for zone-based policies.
type FirewallZone struct {
	Meta
	Name       string
	NetworkIDs []string
}

// AclRule is an ordered L2/L3 access rule.
type AclRule struct {
	Meta
	Name     string
	Enabled  bool
	RuleType AclRuleType
	Action   AclAction
	Index    int
}

// DnsPolicy is a local DNS record or forward rule.
type DnsPolicy struct {
	Meta
	Type     DnsRecordType
	Domain   string
	Value    string
	Enabled  bool
	TTL      Opt[int]
	Priority Opt[int]
}

// Voucher is a hotspot access voucher.
type Voucher struct {
	Meta
	Code             string
	Name             string
	CreatedAt        time.Time
	ExpiresAt        Opt[time.Time]
	TimeLimitMins    Opt[int]
	DataLimitMB      Opt[int64]
	TxRateLimitKbps  Opt[int64]
	RxRateLimitKbps  Opt[int64]
	AuthorizedGuests Opt[int]
}

// TrafficMatchingList is a reusable traffic classifier.
type TrafficMatchingList struct {
	Meta
	Name        string
	Description Opt[string]
	MatchType   string
	Entries     []string
}

// Site is an administrative partition of a controller.
type Site struct {
	Meta
	InternalName string // the slug used in legacy API paths
	DisplayName  string
}

// Event is a log line from the controller, append-only.
type Event struct {
	ID        string
	Timestamp time.Time
	Category  string
	Severity  EventSeverity
	EventType string
	Message   string
	DeviceMac Opt[MacAddress]
	ClientMac Opt[MacAddress]
}

// HealthSummary is the whole-subsystem health record the legacy API reports,
// replaced wholesale on each health poll.
type HealthSummary struct {
	Subsystem  string
	Status     string
	NumDevices Opt[int]
	NumClients Opt[int]
	TxBps      Opt[int64]
	RxBps      Opt[int64]
	WanIP      Opt[string]
	LatencyMs  Opt[int]
	GwMac      Opt[MacAddress]
	GwCPU      Opt[float64]
	GwMemory   Opt[float64]
}

// WanBytes is a monthly WAN usage aggregate.
type WanBytes struct {
	TxBytes int64
	RxBytes int64
}
