// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package legacy

import "encoding/json"

// StaRecord is one station from stat/sta. Pointer fields distinguish absent
// from zero; the firmware omits whole sections depending on client type.
type StaRecord struct {
	ID         string `json:"_id"`
	Mac        string `json:"mac"`
	IP         string `json:"ip"`
	Name       string `json:"name"`
	Hostname   string `json:"hostname"`
	IsWired    bool   `json:"is_wired"`
	IsGuest    bool   `json:"is_guest"`
	Authorized *bool  `json:"authorized"`
	Blocked    *bool  `json:"blocked"`
	AssocTime  *int64 `json:"assoc_time"` // epoch seconds
	Uptime     *int64 `json:"uptime"`
	Vlan       *int   `json:"vlan"`

	// Wireless section
	ESSID        string `json:"essid"`
	BSSID        string `json:"bssid"`
	Channel      *int   `json:"channel"`
	Signal       *int   `json:"signal"`
	TxRate       *int64 `json:"tx_rate"`
	RxRate       *int64 `json:"rx_rate"`
	Satisfaction *int   `json:"satisfaction"`

	// Uplink and counters
	ApMac      string   `json:"ap_mac"`
	SwMac      string   `json:"sw_mac"`
	GwMac      string   `json:"gw_mac"`
	Network    string   `json:"network"`
	TxBytes    *int64   `json:"tx_bytes"`
	RxBytes    *int64   `json:"rx_bytes"`
	TxBytesR   *float64 `json:"tx_bytes-r"`
	RxBytesR   *float64 `json:"rx_bytes-r"`
	GuestExpat *int64   `json:"guest_expire_at"`
}

// SysStats is the numeric stats block on a device record.
type SysStats struct {
	Loadavg1  *json.Number `json:"loadavg_1"`
	Loadavg5  *json.Number `json:"loadavg_5"`
	Loadavg15 *json.Number `json:"loadavg_15"`
	MemUsed   *int64       `json:"mem_used"`
	MemTotal  *int64       `json:"mem_total"`
}

// SystemStats is the string-typed stats block ("system-stats") some
// firmware lines ship instead of sys_stats.
type SystemStats struct {
	CPU    json.Number `json:"cpu"`
	Mem    json.Number `json:"mem"`
	Uptime json.Number `json:"uptime"`
}

// DeviceUplink is the uplink block on a device record.
type DeviceUplink struct {
	UplinkMac string `json:"uplink_mac"`
	TxRateBps *int64 `json:"tx_bytes-r"`
	RxRateBps *int64 `json:"rx_bytes-r"`
}

// DeviceRecord is one device from stat/device. Raw preserves the complete
// record because gateway firmware attaches wan/ipv6 sections in several
// shapes.
type DeviceRecord struct {
	ID         string        `json:"_id"`
	Mac        string        `json:"mac"`
	IP         string        `json:"ip"`
	Name       string        `json:"name"`
	Model      string        `json:"model"`
	Type       string        `json:"type"` // ugw, usw, uap, udm
	State      int           `json:"state"`
	Version    string        `json:"version"`
	Upgradable *bool         `json:"upgradable"`
	NumSta     *int          `json:"num_sta"`
	Uptime     *int64        `json:"uptime"`
	SysStats   *SysStats     `json:"sys_stats"`
	SystemSt   *SystemStats  `json:"system-stats"`
	Uplink     *DeviceUplink `json:"uplink"`

	Raw map[string]any `json:"-"`
}

func (d *DeviceRecord) UnmarshalJSON(b []byte) error {
	type alias DeviceRecord
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	a.Raw = raw
	*d = DeviceRecord(a)
	return nil
}

// GwSystemStats is the gateway stats block on the www/wan health record.
type GwSystemStats struct {
	CPU json.Number `json:"cpu"`
	Mem json.Number `json:"mem"`
}

// HealthRecord is one subsystem from stat/health.
type HealthRecord struct {
	Subsystem  string         `json:"subsystem"`
	Status     string         `json:"status"`
	NumUser    *int           `json:"num_user"`
	NumGuest   *int           `json:"num_guest"`
	NumAdopted *int           `json:"num_adopted"`
	TxBytesR   *float64       `json:"tx_bytes-r"`
	RxBytesR   *float64       `json:"rx_bytes-r"`
	WanIP      string         `json:"wan_ip"`
	GwMac      string         `json:"gw_mac"`
	Latency    *int           `json:"latency"`
	GwStats    *GwSystemStats `json:"gw_system-stats"`
}

// EventRecord is one entry from stat/event.
type EventRecord struct {
	ID        string `json:"_id"`
	TimeMs    int64  `json:"time"`
	Datetime  string `json:"datetime"`
	Key       string `json:"key"`
	Message   string `json:"msg"`
	Subsystem string `json:"subsystem"`
	User      string `json:"user"`  // client mac, when applicable
	Guest     string `json:"guest"` // guest mac, when applicable
	Ap        string `json:"ap"`
	Sw        string `json:"sw"`
	Gw        string `json:"gw"`
}

// AlarmRecord is one entry from stat/alarm.
type AlarmRecord struct {
	EventRecord
	Archived *bool `json:"archived"`
}

// SysInfoRecord is the controller record from stat/sysinfo.
type SysInfoRecord struct {
	Version  string `json:"version"`
	Build    string `json:"build"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

// ReportEntry is one bucket from a stat/report query. Values arrive as
// floats even for byte counters.
type ReportEntry struct {
	TimeMs  int64    `json:"time"`
	WanTx   *float64 `json:"wan-tx_bytes"`
	WanRx   *float64 `json:"wan-rx_bytes"`
	TxBytes *float64 `json:"tx_bytes"`
	RxBytes *float64 `json:"rx_bytes"`
	Mac     string   `json:"user"` // present on .user reports
}

// DPIRecord is one application row from stat/sitedpi.
type DPIRecord struct {
	App     int    `json:"app"`
	Cat     int    `json:"cat"`
	TxBytes *int64 `json:"tx_bytes"`
	RxBytes *int64 `json:"rx_bytes"`
}

// AdminRecord is one administrator from list/admin.
type AdminRecord struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	IsSuper     *bool    `json:"is_super"`
	LastSiteID  string   `json:"last_site_id"`
	Permissions []string `json:"permissions"`
}

// AccountRecord is one RADIUS account from rest/account.
type AccountRecord struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	VlanID   *int   `json:"vlan"`
	TunnelID *int   `json:"tunnel_type"`
}

// BackupRecord is one backup file from cmd/backup list-backups.
type BackupRecord struct {
	Filename string `json:"filename"`
	TimeMs   int64  `json:"time"`
	Datetime string `json:"datetime"`
	Size     int64  `json:"size"`
	Version  string `json:"version"`
}

// SiteRecord is one site from api/self/sites.
type SiteRecord struct {
	ID   string `json:"_id"`
	Name string `json:"name"` // internal slug
	Desc string `json:"desc"` // human-readable description
}
