// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"sync"

	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/stream"
)

const eventLogCapacity = 512

// Store aggregates every mirrored entity kind plus the scalar state the
// pollers maintain. One Store serves one site.
type Store struct {
	Devices          *Collection[domain.MacAddress, domain.Device]
	Clients          *Collection[domain.MacAddress, domain.Client]
	Networks         *Collection[string, domain.Network]
	WifiBroadcasts   *Collection[string, domain.WifiBroadcast]
	FirewallPolicies *Collection[string, domain.FirewallPolicy]
	FirewallZones    *Collection[string, domain.FirewallZone]
	AclRules         *Collection[string, domain.AclRule]
	DnsPolicies      *Collection[string, domain.DnsPolicy]
	Vouchers         *Collection[string, domain.Voucher]
	TrafficLists     *Collection[string, domain.TrafficMatchingList]
	Sites            *Collection[string, domain.Site]

	events *stream.Broadcast[domain.Event]

	logMu    sync.Mutex
	eventLog []domain.Event // newest last, bounded ring

	health      *stream.Watch[[]domain.HealthSummary]
	wanBytes    *stream.Watch[domain.WanBytes]
	clientUsage *stream.Watch[map[domain.MacAddress]domain.WanBytes]
}

// New returns an empty store.
func New() *Store {
	return &Store{
		Devices: NewCollection[domain.MacAddress, domain.Device]("devices").
			WithIndex(func(d domain.Device) string { return d.ID.Value }),
		Clients: NewCollection[domain.MacAddress, domain.Client]("clients").
			WithIndex(func(c domain.Client) string { return c.ID.Value }),
		Networks:         NewCollection[string, domain.Network]("networks"),
		WifiBroadcasts:   NewCollection[string, domain.WifiBroadcast]("wifi_broadcasts"),
		FirewallPolicies: NewCollection[string, domain.FirewallPolicy]("firewall_policies"),
		FirewallZones:    NewCollection[string, domain.FirewallZone]("firewall_zones"),
		AclRules:         NewCollection[string, domain.AclRule]("acl_rules"),
		DnsPolicies:      NewCollection[string, domain.DnsPolicy]("dns_policies"),
		Vouchers:         NewCollection[string, domain.Voucher]("vouchers"),
		TrafficLists:     NewCollection[string, domain.TrafficMatchingList]("traffic_lists"),
		Sites:            NewCollection[string, domain.Site]("sites"),
		events:           stream.NewBroadcast[domain.Event](eventLogCapacity),
		health:           stream.NewWatch[[]domain.HealthSummary](),
		wanBytes:         stream.NewWatch[domain.WanBytes](),
		clientUsage:      stream.NewWatch[map[domain.MacAddress]domain.WanBytes](),
	}
}

// PublishEvent appends e to the bounded log and fans it out.
func (s *Store) PublishEvent(e domain.Event) {
	s.logMu.Lock()
	s.eventLog = append(s.eventLog, e)
	if len(s.eventLog) > eventLogCapacity {
		s.eventLog = s.eventLog[len(s.eventLog)-eventLogCapacity:]
	}
	s.logMu.Unlock()
	s.events.Send(e)
}

// RecentEvents returns the retained event log, oldest first.
func (s *Store) RecentEvents() []domain.Event {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	out := make([]domain.Event, len(s.eventLog))
	copy(out, s.eventLog)
	return out
}

// SubscribeEvents returns a live event subscriber. Lag is reported, never
// blocking.
func (s *Store) SubscribeEvents() *stream.BroadcastSub[domain.Event] {
	return s.events.Subscribe()
}

// CloseEvents ends the event fan-out; subscribers drain and then see
// stream.ErrClosed.
func (s *Store) CloseEvents() {
	s.events.Close()
}

// SetHealth replaces the subsystem health summaries wholesale.
func (s *Store) SetHealth(summaries []domain.HealthSummary) {
	s.health.Set(summaries)
}

// Health returns the latest health summaries.
func (s *Store) Health() ([]domain.HealthSummary, bool) {
	return s.health.Get()
}

// SubscribeHealth returns a watch subscriber for the health summaries.
func (s *Store) SubscribeHealth() *stream.WatchSub[[]domain.HealthSummary] {
	return s.health.Subscribe()
}

// SetMonthlyWanBytes publishes the month-to-date WAN usage aggregate.
func (s *Store) SetMonthlyWanBytes(b domain.WanBytes) {
	s.wanBytes.Set(b)
}

// MonthlyWanBytes returns the latest WAN usage aggregate.
func (s *Store) MonthlyWanBytes() (domain.WanBytes, bool) {
	return s.wanBytes.Get()
}

// SubscribeMonthlyWanBytes returns a watch subscriber for WAN usage.
func (s *Store) SubscribeMonthlyWanBytes() *stream.WatchSub[domain.WanBytes] {
	return s.wanBytes.Subscribe()
}

// SetClientDailyUsage publishes today's per-client byte counters.
func (s *Store) SetClientDailyUsage(usage map[domain.MacAddress]domain.WanBytes) {
	s.clientUsage.Set(usage)
}

// ClientDailyUsage returns the latest per-client byte counters.
func (s *Store) ClientDailyUsage() (map[domain.MacAddress]domain.WanBytes, bool) {
	return s.clientUsage.Get()
}

// SubscribeClientDailyUsage returns a watch subscriber for per-client usage.
func (s *Store) SubscribeClientDailyUsage() *stream.WatchSub[map[domain.MacAddress]domain.WanBytes] {
	return s.clientUsage.Subscribe()
}

// DeviceByID finds a device by either of its identifier namespaces, through
// the by-id index maintained on publish.
func (s *Store) DeviceByID(id string) (domain.Device, bool) {
	return s.Devices.ByIndex(id)
}

// ClientByID finds a client by either of its identifier namespaces, through
// the by-id index maintained on publish.
func (s *Store) ClientByID(id string) (domain.Client, bool) {
	return s.Clients.ByIndex(id)
}

// ResolveDeviceMac maps a device id onto its MAC, for uplink references.
func (s *Store) ResolveDeviceMac(id string) (domain.MacAddress, bool) {
	d, ok := s.DeviceByID(id)
	if !ok {
		return "", false
	}
	return d.Mac, true
}

// ApplyStatsUpdate merges a partial stats envelope into the device under
// update.Mac, publishing once. Updates for unknown devices are dropped; the
// next full refresh will bring the device itself.
func (s *Store) ApplyStatsUpdate(update domain.StatsUpdate) bool {
	return s.Devices.Update(update.Mac, func(d domain.Device) domain.Device {
		d.Stats = d.Stats.Merge(update.Stats)
		d.ClientCount = d.ClientCount.Merge(update.ClientCount)
		d.WanIPv6 = d.WanIPv6.Merge(update.WanIPv6)
		d.UplinkDeviceMac = d.UplinkDeviceMac.Merge(update.UplinkDeviceMac)
		return d
	})
}
