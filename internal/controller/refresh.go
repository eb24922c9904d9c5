// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/unictl/internal/convert"
	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/metrics"
	"github.com/ManuGH/unictl/internal/unifi"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
	"github.com/ManuGH/unictl/internal/unifi/rest"
)

const (
	refreshPageSize  = 100
	eventFetchLimit  = 200
	seenEventsCap    = 4096
	fetchConcurrency = 8
)

// fullRefresh re-mirrors every entity kind. Configuration kinds are replaced
// wholesale so deletions on the controller propagate; devices merge supplement
// data from the session API when one is available.
func (c *Controller) fullRefresh(ctx context.Context) error {
	start := time.Now()
	restc, legacyc, siteID := c.clients()

	var err error
	if restc != nil {
		err = c.refreshFromREST(ctx, restc, legacyc, siteID)
	} else {
		err = c.refreshFromLegacy(ctx, legacyc)
	}

	if err != nil {
		metrics.ObserveRefresh("error")
		return err
	}
	metrics.ObserveRefresh("ok")
	c.logger.Debug().Dur("elapsed", time.Since(start)).Msg("refresh complete")
	return nil
}

func (c *Controller) refreshFromREST(ctx context.Context, restc *rest.Client, legacyc *legacy.Client, siteID string) error {
	now := time.Now()

	var (
		devices  map[domain.MacAddress]domain.Device
		networks map[string]domain.Network
		wifi     map[string]domain.WifiBroadcast
		policies map[string]domain.FirewallPolicy
		zones    map[string]domain.FirewallZone
		acls     map[string]domain.AclRule
		dns      map[string]domain.DnsPolicy
		vouchers map[string]domain.Voucher
		traffic  map[string]domain.TrafficMatchingList
		sites    map[string]domain.Site
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		devices, err = c.fetchDevices(gctx, restc, siteID, now)
		return err
	})
	g.Go(func() error {
		var err error
		networks, err = c.fetchNetworks(gctx, restc, siteID, now)
		return err
	})
	g.Go(func() error {
		wire, err := paginate(gctx, restc.ListWifiBroadcasts, siteID)
		if err != nil {
			return err
		}
		wifi = make(map[string]domain.WifiBroadcast, len(wire))
		for _, w := range wire {
			e := convert.WifiBroadcast(w, now)
			wifi[e.ID.Value] = e
		}
		return nil
	})
	g.Go(func() error {
		wire, err := paginate(gctx, restc.ListFirewallPolicies, siteID)
		if err != nil {
			return err
		}
		policies = make(map[string]domain.FirewallPolicy, len(wire))
		for _, w := range wire {
			e := convert.FirewallPolicy(w, now)
			policies[e.ID.Value] = e
		}
		return nil
	})
	g.Go(func() error {
		wire, err := paginate(gctx, restc.ListFirewallZones, siteID)
		if err != nil {
			return err
		}
		zones = make(map[string]domain.FirewallZone, len(wire))
		for _, w := range wire {
			e := convert.FirewallZone(w, now)
			zones[e.ID.Value] = e
		}
		return nil
	})
	g.Go(func() error {
		wire, err := rest.PaginateAll(gctx, refreshPageSize, func(ctx context.Context, offset int64, limit int32) (rest.Page[rest.Site], error) {
			return restc.ListSites(ctx, offset, limit)
		})
		if err != nil {
			return err
		}
		sites = make(map[string]domain.Site, len(wire))
		for _, w := range wire {
			e := convert.Site(w, now)
			sites[e.ID.Value] = e
		}
		return nil
	})

	// Kinds newer firmware may not serve. A 404 means the endpoint does not
	// exist there; any failure degrades to an empty snapshot instead of
	// failing the refresh.
	g.Go(func() error {
		acls = optionalKind(c, "acl_rules", now, func() ([]rest.AclRule, error) {
			return paginate(gctx, restc.ListAclRules, siteID)
		}, convert.AclRule)
		return nil
	})
	g.Go(func() error {
		dns = optionalKind(c, "dns_policies", now, func() ([]rest.DnsPolicy, error) {
			return paginate(gctx, restc.ListDnsPolicies, siteID)
		}, convert.DnsPolicy)
		return nil
	})
	g.Go(func() error {
		vouchers = optionalKind(c, "vouchers", now, func() ([]rest.Voucher, error) {
			return paginate(gctx, restc.ListVouchers, siteID)
		}, convert.Voucher)
		return nil
	})
	g.Go(func() error {
		traffic = optionalKind(c, "traffic_lists", now, func() ([]rest.TrafficMatchingList, error) {
			return paginate(gctx, restc.ListTrafficMatchingLists, siteID)
		}, convert.TrafficMatchingList)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if legacyc != nil {
		c.supplementFromLegacy(ctx, legacyc, devices, now)
	}

	c.store.Devices.Replace(devices)
	c.store.Networks.Replace(networks)
	c.store.WifiBroadcasts.Replace(wifi)
	c.store.FirewallPolicies.Replace(policies)
	c.store.FirewallZones.Replace(zones)
	c.store.AclRules.Replace(acls)
	c.store.DnsPolicies.Replace(dns)
	c.store.Vouchers.Replace(vouchers)
	c.store.TrafficLists.Replace(traffic)
	c.store.Sites.Replace(sites)
	return nil
}

// fetchDevices lists devices and enriches each with its per-device statistics,
// fetched concurrently with bounded fan-out. A failing stats call leaves that
// device at its list representation.
func (c *Controller) fetchDevices(ctx context.Context, restc *rest.Client, siteID string, now time.Time) (map[domain.MacAddress]domain.Device, error) {
	wire, err := paginate(ctx, restc.ListDevices, siteID)
	if err != nil {
		return nil, err
	}
	converted := make([]domain.Device, len(wire))
	valid := make([]bool, len(wire))
	for i, w := range wire {
		d, cerr := convert.Device(w, now)
		if cerr != nil {
			c.logger.Warn().Err(cerr).Str(log.FieldEntityID, w.ID).Msg("device dropped")
			continue
		}
		converted[i] = d
		valid[i] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i := range wire {
		if !valid[i] {
			continue
		}
		g.Go(func() error {
			if stats, serr := restc.GetDeviceStats(gctx, siteID, wire[i].ID); serr == nil {
				converted[i].Stats = converted[i].Stats.Merge(convert.DeviceStats(stats))
			} else {
				c.logger.Debug().Err(serr).Str(log.FieldDeviceMAC, string(converted[i].Mac)).Msg("device stats unavailable")
			}
			return nil
		})
	}
	_ = g.Wait()

	devices := make(map[domain.MacAddress]domain.Device, len(wire))
	for i := range converted {
		if valid[i] {
			devices[converted[i].Mac] = converted[i]
		}
	}
	return devices, nil
}

// fetchNetworks lists networks and upgrades each to its detail representation
// when the detail endpoint answers, fetching details concurrently.
func (c *Controller) fetchNetworks(ctx context.Context, restc *rest.Client, siteID string, now time.Time) (map[string]domain.Network, error) {
	wire, err := paginate(ctx, restc.ListNetworks, siteID)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i := range wire {
		g.Go(func() error {
			if detail, derr := restc.GetNetwork(gctx, siteID, wire[i].ID); derr == nil {
				wire[i] = detail
			}
			return nil
		})
	}
	_ = g.Wait()

	networks := make(map[string]domain.Network, len(wire))
	for _, w := range wire {
		e := convert.Network(w, now)
		networks[e.ID.Value] = e
	}
	return networks, nil
}

// supplementFromLegacy fills REST-unknown device fields from the session API
// and folds in health and the event backlog. The three session fetches are
// independent and run concurrently; all of it is best effort.
func (c *Controller) supplementFromLegacy(ctx context.Context, legacyc *legacy.Client, devices map[domain.MacAddress]domain.Device, now time.Time) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := legacyc.Clone().ListDevices(gctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("session device list failed")
			return nil
		}
		for _, rec := range recs {
			ld, cerr := convert.LegacyDevice(rec, now)
			if cerr != nil {
				continue
			}
			if d, ok := devices[ld.Mac]; ok {
				merged := ld
				merged.Meta = d.Meta
				merged.Name = d.Name
				merged.Model = d.Model
				merged.Type = d.Type
				merged.State = d.State
				merged.Features = d.Features
				merged.Ports = d.Ports
				merged.Radios = d.Radios
				merged.Attributes = d.Attributes
				merged.IP = ld.IP.Merge(d.IP)
				merged.WanIPv6 = ld.WanIPv6.Merge(d.WanIPv6)
				merged.FirmwareVersion = ld.FirmwareVersion.Merge(d.FirmwareVersion)
				merged.FirmwareUpdatable = ld.FirmwareUpdatable.Merge(d.FirmwareUpdatable)
				merged.Stats = ld.Stats.Merge(d.Stats)
				merged.ClientCount = ld.ClientCount.Merge(d.ClientCount)
				merged.UplinkDeviceMac = ld.UplinkDeviceMac.Merge(d.UplinkDeviceMac)
				devices[ld.Mac] = merged
			}
		}
		return nil
	})

	g.Go(func() error {
		if health, herr := legacyc.Clone().Health(gctx); herr == nil {
			summaries := make([]domain.HealthSummary, 0, len(health))
			for _, h := range health {
				summaries = append(summaries, convert.Health(h))
			}
			c.store.SetHealth(summaries)
		}
		return nil
	})

	g.Go(func() error {
		c.ingestEvents(gctx, legacyc.Clone())
		return nil
	})

	_ = g.Wait()
}

// ingestEvents pulls the recent event and alarm backlog, publishing only
// entries not seen before so periodic refreshes do not replay the log.
func (c *Controller) ingestEvents(ctx context.Context, legacyc *legacy.Client) {
	if events, err := legacyc.ListEvents(ctx, eventFetchLimit); err == nil {
		for _, rec := range events {
			e := convert.LegacyEvent(rec)
			if c.markEventSeen(e.ID) {
				c.store.PublishEvent(e)
			}
		}
	} else {
		c.logger.Debug().Err(err).Msg("event backlog unavailable")
	}
	if alarms, err := legacyc.ListAlarms(ctx); err == nil {
		for _, rec := range alarms {
			e := convert.Alarm(rec)
			if c.markEventSeen(e.ID) {
				c.store.PublishEvent(e)
			}
		}
	}
}

// markEventSeen records an event id, reporting true the first time. The set
// is bounded; when full it resets, which at worst replays a backlog page.
func (c *Controller) markEventSeen(id string) bool {
	if id == "" {
		return true
	}
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	if _, ok := c.seenEvents[id]; ok {
		return false
	}
	if len(c.seenEvents) >= seenEventsCap {
		c.seenEvents = make(map[string]struct{}, seenEventsCap)
	}
	c.seenEvents[id] = struct{}{}
	return true
}

// refreshFromLegacy is the session-only reduced mirror: devices, clients,
// sites and events. Kinds the session API does not model are emptied so
// consumers never see stale REST-era snapshots.
func (c *Controller) refreshFromLegacy(ctx context.Context, legacyc *legacy.Client) error {
	if legacyc == nil {
		return unifi.ErrControllerDisconnected
	}
	now := time.Now()

	recs, err := legacyc.ListDevices(ctx)
	if err != nil {
		return err
	}
	devices := make(map[domain.MacAddress]domain.Device, len(recs))
	for _, rec := range recs {
		d, cerr := convert.LegacyDevice(rec, now)
		if cerr != nil {
			c.logger.Warn().Err(cerr).Msg("device dropped")
			continue
		}
		devices[d.Mac] = d
	}
	c.store.Devices.Replace(devices)

	if stas, serr := legacyc.ListClients(ctx); serr == nil {
		clients := make(map[domain.MacAddress]domain.Client, len(stas))
		for _, rec := range stas {
			cl, cerr := convert.LegacyClient(rec, now)
			if cerr != nil {
				continue
			}
			clients[cl.Mac] = cl
		}
		c.store.Clients.Replace(clients)
	} else {
		c.logger.Warn().Err(serr).Msg("session client list failed")
	}

	if siteRecs, serr := legacyc.SelfSites(ctx); serr == nil {
		sites := make(map[string]domain.Site, len(siteRecs))
		for _, rec := range siteRecs {
			s := convert.LegacySite(rec, now)
			sites[s.ID.Value] = s
		}
		c.store.Sites.Replace(sites)
	}

	if health, herr := legacyc.Health(ctx); herr == nil {
		summaries := make([]domain.HealthSummary, 0, len(health))
		for _, h := range health {
			summaries = append(summaries, convert.Health(h))
		}
		c.store.SetHealth(summaries)
	}

	c.ingestEvents(ctx, legacyc)

	c.store.Networks.Replace(nil)
	c.store.WifiBroadcasts.Replace(nil)
	c.store.FirewallPolicies.Replace(nil)
	c.store.FirewallZones.Replace(nil)
	c.store.AclRules.Replace(nil)
	c.store.DnsPolicies.Replace(nil)
	c.store.Vouchers.Replace(nil)
	c.store.TrafficLists.Replace(nil)
	return nil
}

// paginate drains one site-scoped list endpoint.
func paginate[T any](ctx context.Context, list func(ctx context.Context, siteID string, offset int64, limit int32) (rest.Page[T], error), siteID string) ([]T, error) {
	return rest.PaginateAll(ctx, refreshPageSize, func(ctx context.Context, offset int64, limit int32) (rest.Page[T], error) {
		return list(ctx, siteID, offset, limit)
	})
}

// optionalKind fetches a kind whose endpoint older firmware lacks. Failures
// yield an empty snapshot; a 404 is expected and logged at debug only.
func optionalKind[W any, E interface{ Key() string }](c *Controller, kind string, now time.Time, fetch func() ([]W, error), conv func(W, time.Time) E) map[string]E {
	wire, err := fetch()
	if err != nil {
		if errors.Is(err, unifi.ErrNotFound) {
			c.logger.Debug().Str(log.FieldEndpoint, kind).Msg("endpoint unsupported on this firmware")
		} else {
			c.warn(kind + " unavailable: " + err.Error())
		}
		return map[string]E{}
	}
	out := make(map[string]E, len(wire))
	for _, w := range wire {
		e := conv(w, now)
		out[e.Key()] = e
	}
	return out
}
