// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"context"
	"time"

	"github.com/ManuGH/unictl/internal/convert"
	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/stream"
	"github.com/ManuGH/unictl/internal/unifi"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
	"github.com/ManuGH/unictl/internal/unifi/rest"
)

// Snapshot accessors. Each returns the current mirrored contents sorted by
// key; the matching Subscribe returns a last-value-wins watch over the same
// snapshots.

func (c *Controller) Devices() []domain.Device {
	return c.store.Devices.Snapshot()
}

func (c *Controller) SubscribeDevices() *stream.WatchSub[[]domain.Device] {
	return c.store.Devices.Subscribe()
}

func (c *Controller) Device(mac domain.MacAddress) (domain.Device, bool) {
	return c.store.Devices.Get(mac)
}

func (c *Controller) Clients() []domain.Client {
	return c.store.Clients.Snapshot()
}

func (c *Controller) SubscribeClients() *stream.WatchSub[[]domain.Client] {
	return c.store.Clients.Subscribe()
}

func (c *Controller) Client(mac domain.MacAddress) (domain.Client, bool) {
	return c.store.Clients.Get(mac)
}

func (c *Controller) Networks() []domain.Network {
	return c.store.Networks.Snapshot()
}

func (c *Controller) SubscribeNetworks() *stream.WatchSub[[]domain.Network] {
	return c.store.Networks.Subscribe()
}

func (c *Controller) WifiBroadcasts() []domain.WifiBroadcast {
	return c.store.WifiBroadcasts.Snapshot()
}

func (c *Controller) SubscribeWifiBroadcasts() *stream.WatchSub[[]domain.WifiBroadcast] {
	return c.store.WifiBroadcasts.Subscribe()
}

func (c *Controller) FirewallPolicies() []domain.FirewallPolicy {
	return c.store.FirewallPolicies.Snapshot()
}

func (c *Controller) SubscribeFirewallPolicies() *stream.WatchSub[[]domain.FirewallPolicy] {
	return c.store.FirewallPolicies.Subscribe()
}

func (c *Controller) FirewallZones() []domain.FirewallZone {
	return c.store.FirewallZones.Snapshot()
}

func (c *Controller) SubscribeFirewallZones() *stream.WatchSub[[]domain.FirewallZone] {
	return c.store.FirewallZones.Subscribe()
}

func (c *Controller) AclRules() []domain.AclRule {
	return c.store.AclRules.Snapshot()
}

func (c *Controller) SubscribeAclRules() *stream.WatchSub[[]domain.AclRule] {
	return c.store.AclRules.Subscribe()
}

func (c *Controller) DnsPolicies() []domain.DnsPolicy {
	return c.store.DnsPolicies.Snapshot()
}

func (c *Controller) SubscribeDnsPolicies() *stream.WatchSub[[]domain.DnsPolicy] {
	return c.store.DnsPolicies.Subscribe()
}

func (c *Controller) Vouchers() []domain.Voucher {
	return c.store.Vouchers.Snapshot()
}

func (c *Controller) SubscribeVouchers() *stream.WatchSub[[]domain.Voucher] {
	return c.store.Vouchers.Subscribe()
}

func (c *Controller) TrafficMatchingLists() []domain.TrafficMatchingList {
	return c.store.TrafficLists.Snapshot()
}

func (c *Controller) SubscribeTrafficMatchingLists() *stream.WatchSub[[]domain.TrafficMatchingList] {
	return c.store.TrafficLists.Subscribe()
}

func (c *Controller) Sites() []domain.Site {
	return c.store.Sites.Snapshot()
}

func (c *Controller) SubscribeSites() *stream.WatchSub[[]domain.Site] {
	return c.store.Sites.Subscribe()
}

// RecentEvents returns the retained event log, oldest first.
func (c *Controller) RecentEvents() []domain.Event {
	return c.store.RecentEvents()
}

// SubscribeEvents returns a live event subscriber. A lagging consumer gets a
// LaggedError once, then resumes at the oldest retained event.
func (c *Controller) SubscribeEvents() *stream.BroadcastSub[domain.Event] {
	return c.store.SubscribeEvents()
}

// SiteHealth returns the latest subsystem summaries from the health poll.
func (c *Controller) SiteHealth() ([]domain.HealthSummary, bool) {
	return c.store.Health()
}

func (c *Controller) SubscribeSiteHealth() *stream.WatchSub[[]domain.HealthSummary] {
	return c.store.SubscribeHealth()
}

// MonthlyWanBytes returns the month-to-date WAN usage aggregate.
func (c *Controller) MonthlyWanBytes() (domain.WanBytes, bool) {
	return c.store.MonthlyWanBytes()
}

func (c *Controller) SubscribeMonthlyWanBytes() *stream.WatchSub[domain.WanBytes] {
	return c.store.SubscribeMonthlyWanBytes()
}

// ClientDailyUsage returns the latest per-client byte counters.
func (c *Controller) ClientDailyUsage() (map[domain.MacAddress]domain.WanBytes, bool) {
	return c.store.ClientDailyUsage()
}

func (c *Controller) SubscribeClientDailyUsage() *stream.WatchSub[map[domain.MacAddress]domain.WanBytes] {
	return c.store.SubscribeClientDailyUsage()
}

// Site returns the resolved site identifiers of the live connection.
func (c *Controller) Site() (siteID, slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.siteID, c.siteSlug
}

// Session-surface read-throughs. These are not mirrored; each call goes to
// the controller and needs a live session.

func (c *Controller) sessionClient() (*legacy.Client, error) {
	_, legacyc, _ := c.clients()
	if legacyc == nil {
		return nil, &unifi.UnsupportedError{Op: "session query", Required: "a session"}
	}
	return legacyc, nil
}

// SysInfo returns the controller's version and runtime information.
func (c *Controller) SysInfo(ctx context.Context) (legacy.SysInfoRecord, error) {
	legacyc, err := c.sessionClient()
	if err != nil {
		return legacy.SysInfoRecord{}, err
	}
	return legacyc.SysInfo(ctx)
}

// Backups lists the controller's stored autobackups.
func (c *Controller) Backups(ctx context.Context) ([]legacy.BackupRecord, error) {
	legacyc, err := c.sessionClient()
	if err != nil {
		return nil, err
	}
	return legacyc.ListBackups(ctx)
}

// Admins lists the site's administrators.
func (c *Controller) Admins(ctx context.Context) ([]legacy.AdminRecord, error) {
	legacyc, err := c.sessionClient()
	if err != nil {
		return nil, err
	}
	return legacyc.ListAdmins(ctx)
}

// RadiusAccounts lists the RADIUS user accounts.
func (c *Controller) RadiusAccounts(ctx context.Context) ([]legacy.AccountRecord, error) {
	legacyc, err := c.sessionClient()
	if err != nil {
		return nil, err
	}
	return legacyc.ListAccounts(ctx)
}

// SiteDPI returns the per-application deep packet inspection counters.
func (c *Controller) SiteDPI(ctx context.Context) ([]legacy.DPIRecord, error) {
	legacyc, err := c.sessionClient()
	if err != nil {
		return nil, err
	}
	return legacyc.SiteDPI(ctx)
}

// Integration-surface read-throughs.

func (c *Controller) integrationClient() (*rest.Client, string, error) {
	restc, _, siteID := c.clients()
	if restc == nil || siteID == "" {
		return nil, "", &unifi.UnsupportedError{Op: "integration query", Required: "the integration API"}
	}
	return restc, siteID, nil
}

// AppInfo returns the network application's version information.
func (c *Controller) AppInfo(ctx context.Context) (rest.AppInfo, error) {
	restc, _, err := c.integrationClient()
	if err != nil {
		return rest.AppInfo{}, err
	}
	return restc.Info(ctx)
}

// DeviceDetails fetches the full detail representation of one device,
// including its ports and radios, bypassing the mirror.
func (c *Controller) DeviceDetails(ctx context.Context, id domain.EntityID, mac domain.MacAddress) (domain.Device, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return domain.Device{}, err
	}
	target, err := c.deviceTarget(id, mac)
	if err != nil {
		return domain.Device{}, err
	}
	if target.uuid == "" {
		return domain.Device{}, &unifi.DeviceNotFoundError{ID: string(mac)}
	}
	wire, err := restc.GetDevice(ctx, siteID, target.uuid)
	if err != nil {
		return domain.Device{}, err
	}
	d, err := convert.DeviceDetails(wire, time.Now())
	if err != nil {
		return domain.Device{}, err
	}
	if !d.UplinkDeviceMac.IsSome() && wire.UplinkDeviceID != "" {
		if upMac, ok := c.store.ResolveDeviceMac(wire.UplinkDeviceID); ok {
			d.UplinkDeviceMac = domain.Some(upMac)
		}
	}
	return d, nil
}

// Countries returns the country reference list.
func (c *Controller) Countries(ctx context.Context) ([]rest.Country, error) {
	restc, _, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	return restc.ListCountries(ctx)
}

// Wans returns the site's WAN interfaces.
func (c *Controller) Wans(ctx context.Context) ([]rest.WanInterface, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	return restc.ListWans(ctx, siteID)
}

// DpiApplications returns the DPI application catalog.
func (c *Controller) DpiApplications(ctx context.Context) ([]rest.DpiApplication, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	return restc.ListDpiApplications(ctx, siteID)
}

// RadiusProfiles returns the site's RADIUS profiles.
func (c *Controller) RadiusProfiles(ctx context.Context) ([]rest.RadiusProfile, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	return restc.ListRadiusProfiles(ctx, siteID)
}

// NetworkReferences lists the entities referencing a network, the check to
// run before deleting one.
func (c *Controller) NetworkReferences(ctx context.Context, networkID string) ([]rest.NetworkReference, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	return restc.NetworkReferences(ctx, siteID, networkID)
}

// FirewallPolicyOrdering returns the current policy evaluation order.
func (c *Controller) FirewallPolicyOrdering(ctx context.Context) ([]string, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	ord, err := restc.GetFirewallPolicyOrdering(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return ord.IDs, nil
}

// AclRuleOrdering returns the current rule evaluation order.
func (c *Controller) AclRuleOrdering(ctx context.Context) ([]string, error) {
	restc, siteID, err := c.integrationClient()
	if err != nil {
		return nil, err
	}
	ord, err := restc.GetAclRuleOrdering(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return ord.IDs, nil
}
