// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

// Bandwidth is an instantaneous byte-rate pair.
type Bandwidth struct {
	TxBps int64
	RxBps int64
}

// DeviceStats is the partial statistics record produced by the REST stats
// endpoint, the legacy device list, and the push stream. Every field is
// optional because no single producer supplies all of them.
type DeviceStats struct {
	CPUPercent    Opt[float64]
	MemoryPercent Opt[float64]
	Load1         Opt[float64]
	Load5         Opt[float64]
	Load15        Opt[float64]
	UptimeSecs    Opt[int64]
	Uplink        Opt[Bandwidth]
	TxBytes       Opt[int64]
	RxBytes       Opt[int64]
}

// Merge overlays other onto s field by field: a field is overwritten only
// when other carries it. The operation is commutative on disjoint fields and
// idempotent on equal updates.
func (s DeviceStats) Merge(other DeviceStats) DeviceStats {
	s.CPUPercent = s.CPUPercent.Merge(other.CPUPercent)
	s.MemoryPercent = s.MemoryPercent.Merge(other.MemoryPercent)
	s.Load1 = s.Load1.Merge(other.Load1)
	s.Load5 = s.Load5.Merge(other.Load5)
	s.Load15 = s.Load15.Merge(other.Load15)
	s.UptimeSecs = s.UptimeSecs.Merge(other.UptimeSecs)
	s.Uplink = s.Uplink.Merge(other.Uplink)
	s.TxBytes = s.TxBytes.Merge(other.TxBytes)
	s.RxBytes = s.RxBytes.Merge(other.RxBytes)
	return s
}

// IsZero reports whether no field is known.
func (s DeviceStats) IsZero() bool {
	return !s.CPUPercent.IsSome() && !s.MemoryPercent.IsSome() &&
		!s.Load1.IsSome() && !s.Load5.IsSome() && !s.Load15.IsSome() &&
		!s.UptimeSecs.IsSome() && !s.Uplink.IsSome() &&
		!s.TxBytes.IsSome() && !s.RxBytes.IsSome()
}

// StatsUpdate is the envelope the stats-merge task consumes. All producers
// of per-device statistics funnel through one queue so writes for a device
// are serialized.
type StatsUpdate struct {
	Mac             MacAddress
	Stats           DeviceStats
	ClientCount     Opt[int]
	WanIPv6         Opt[string]
	UplinkDeviceMac Opt[MacAddress]
}
