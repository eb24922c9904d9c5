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
	"github.com/ManuGH/unictl/internal/stream"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
	"github.com/ManuGH/unictl/internal/unifi/wsev"
)

const (
	clientPollInterval      = 30 * time.Second
	deviceStatsPollInterval = 2 * time.Second
	usagePollInterval       = 60 * time.Second
)

// startTasks spawns the connection-scoped background work. Every task exits
// on child-context cancellation; Disconnect waits for all of them.
func (c *Controller) startTasks(ctx context.Context) {
	c.goTask(ctx, "stats-merge", c.statsMerge)
	c.goTask(ctx, "commands", c.commandProcessor)
	c.goTask(ctx, "clients", func(ctx context.Context) {
		c.every(ctx, clientPollInterval, "clients", c.pollClients)
	})
	c.goTask(ctx, "usage", func(ctx context.Context) {
		c.every(ctx, usagePollInterval, "usage", c.pollUsage)
	})

	if c.cfg.BandwidthPollInterval > 0 {
		c.goTask(ctx, "health", func(ctx context.Context) {
			c.every(ctx, c.cfg.BandwidthPollInterval, "health", c.pollHealth)
		})
	}
	if c.cfg.RefreshInterval > 0 {
		c.goTask(ctx, "refresh", func(ctx context.Context) {
			t := time.NewTicker(c.cfg.RefreshInterval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if err := c.fullRefresh(ctx); err != nil && ctx.Err() == nil {
						c.logger.Warn().Err(err).Msg("periodic refresh failed")
					}
				}
			}
		})
	}

	// Device statistics arrive over the push stream when one is live; without
	// one a fast poll keeps them current.
	c.mu.Lock()
	streamLive := c.wsc != nil
	c.mu.Unlock()
	if !streamLive {
		c.goTask(ctx, "device-stats", func(ctx context.Context) {
			c.every(ctx, deviceStatsPollInterval, "device-stats", c.pollDeviceStats)
		})
	}
}

// every runs work immediately and then on each tick until ctx ends. Failures
// are logged, never fatal.
func (c *Controller) every(ctx context.Context, interval time.Duration, name string, work func(context.Context) error) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := work(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn().Err(err).Str(log.FieldTask, name).Msg("poll failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// statsMerge is the single consumer of the stats queue; it serializes every
// partial stats write into the store.
func (c *Controller) statsMerge(ctx context.Context) {
	for {
		update, err := c.statsQ.Pop(ctx)
		if err != nil {
			return
		}
		if !c.store.ApplyStatsUpdate(update) {
			c.logger.Debug().Str(log.FieldDeviceMAC, string(update.Mac)).Msg("stats for unknown device dropped")
		}
	}
}

// commandProcessor drains the command queue one envelope at a time.
func (c *Controller) commandProcessor(ctx context.Context) {
	c.mu.Lock()
	commands := c.commands
	c.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-commands:
			out, err := c.route(ctx, env.cmd)
			env.reply <- commandResult{out: out, err: err}
		}
	}
}

// pollClients re-mirrors the client collection. One Replace publishes the
// whole snapshot, so stations that left simply disappear.
func (c *Controller) pollClients(ctx context.Context) error {
	restc, legacyc, siteID := c.clients()
	now := time.Now()

	if restc != nil {
		wire, err := paginate(ctx, restc.ListClients, siteID)
		if err != nil {
			return err
		}
		clients := make(map[domain.MacAddress]domain.Client, len(wire))
		for _, w := range wire {
			cl, cerr := convert.Client(w, now, c.store.ResolveDeviceMac)
			if cerr != nil {
				continue
			}
			clients[cl.Mac] = cl
		}
		// The session API carries association detail the integration API
		// lacks; fold it in before the single publish.
		if legacyc != nil {
			if stas, serr := legacyc.ListClients(ctx); serr == nil {
				for _, rec := range stas {
					lc, cerr := convert.LegacyClient(rec, now)
					if cerr != nil {
						continue
					}
					if existing, ok := clients[lc.Mac]; ok {
						merged := lc
						merged.Meta = existing.Meta
						merged.Name = existing.Name
						merged.Type = existing.Type
						merged.IP = lc.IP.Merge(existing.IP)
						merged.Hostname = lc.Hostname.Merge(existing.Hostname)
						merged.ConnectedAt = lc.ConnectedAt.Merge(existing.ConnectedAt)
						merged.UplinkDeviceMac = lc.UplinkDeviceMac.Merge(existing.UplinkDeviceMac)
						merged.VLAN = lc.VLAN.Merge(existing.VLAN)
						merged.Blocked = lc.Blocked.Merge(existing.Blocked)
						clients[lc.Mac] = merged
					} else {
						clients[lc.Mac] = lc
					}
				}
			}
		}
		c.store.Clients.Replace(clients)
		return nil
	}

	if legacyc == nil {
		return nil
	}
	stas, err := legacyc.ListClients(ctx)
	if err != nil {
		return err
	}
	clients := make(map[domain.MacAddress]domain.Client, len(stas))
	for _, rec := range stas {
		cl, cerr := convert.LegacyClient(rec, now)
		if cerr != nil {
			continue
		}
		clients[cl.Mac] = cl
	}
	c.store.Clients.Replace(clients)
	return nil
}

// pollHealth refreshes the subsystem summaries and forwards the gateway's
// own utilization as a stats update.
func (c *Controller) pollHealth(ctx context.Context) error {
	_, legacyc, _ := c.clients()
	if legacyc == nil {
		return nil
	}
	records, err := legacyc.Health(ctx)
	if err != nil {
		return err
	}
	summaries := make([]domain.HealthSummary, 0, len(records))
	for _, rec := range records {
		h := convert.Health(rec)
		summaries = append(summaries, h)
		if mac, ok := h.GwMac.Get(); ok {
			c.statsQ.Push(domain.StatsUpdate{
				Mac: mac,
				Stats: domain.DeviceStats{
					CPUPercent:    h.GwCPU,
					MemoryPercent: h.GwMemory,
				},
			})
		}
	}
	c.store.SetHealth(summaries)
	return nil
}

// pollDeviceStats is the fast poll standing in for the push stream. The
// integration statistics endpoint is primary, fanned out per mirrored device;
// the session API supplements the counters it alone carries.
func (c *Controller) pollDeviceStats(ctx context.Context) error {
	restc, legacyc, siteID := c.clients()

	if restc != nil && siteID != "" {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(fetchConcurrency)
		for _, d := range c.store.Devices.Snapshot() {
			if d.ID.Kind != domain.IDKindUUID {
				continue
			}
			g.Go(func() error {
				stats, err := restc.GetDeviceStats(gctx, siteID, d.ID.Value)
				if err != nil {
					c.logger.Debug().Err(err).Str(log.FieldDeviceMAC, string(d.Mac)).Msg("device stats unavailable")
					return nil
				}
				c.statsQ.Push(domain.StatsUpdate{Mac: d.Mac, Stats: convert.DeviceStats(stats)})
				return nil
			})
		}
		_ = g.Wait()
	}

	if legacyc == nil {
		return nil
	}
	return c.pushLegacyDeviceStats(ctx, legacyc)
}

// pushLegacyDeviceStats forwards the session device list as stats updates.
func (c *Controller) pushLegacyDeviceStats(ctx context.Context, legacyc *legacy.Client) error {
	recs, err := legacyc.ListDevices(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		update, cerr := convert.LegacyDeviceStats(rec)
		if cerr != nil {
			continue
		}
		c.statsQ.Push(update)
	}
	return nil
}

// pollUsage refreshes the month-to-date WAN aggregate and the per-client
// daily byte counters from the session report endpoint.
func (c *Controller) pollUsage(ctx context.Context) error {
	_, legacyc, _ := c.clients()
	if legacyc == nil {
		return nil
	}
	now := time.Now()

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	entries, err := legacyc.Report(ctx, "daily", "site", []string{"wan-tx_bytes", "wan-rx_bytes"}, monthStart, now, nil)
	if err != nil {
		return err
	}
	var wan domain.WanBytes
	for _, e := range entries {
		if e.WanTx != nil {
			wan.TxBytes += int64(*e.WanTx)
		}
		if e.WanRx != nil {
			wan.RxBytes += int64(*e.WanRx)
		}
	}
	c.store.SetMonthlyWanBytes(wan)

	macs := make([]string, 0, c.store.Clients.Len())
	for _, mac := range c.store.Clients.Keys() {
		macs = append(macs, string(mac))
	}
	if len(macs) == 0 {
		c.store.SetClientDailyUsage(map[domain.MacAddress]domain.WanBytes{})
		return nil
	}
	perClient, err := legacyc.Report(ctx, "daily", "user", []string{"tx_bytes", "rx_bytes"}, now.Add(-24*time.Hour), now, macs)
	if err != nil {
		return err
	}
	usage := make(map[domain.MacAddress]domain.WanBytes, len(perClient))
	for _, e := range perClient {
		mac, merr := domain.ParseMac(e.Mac)
		if merr != nil {
			continue
		}
		b := usage[mac]
		if e.TxBytes != nil {
			b.TxBytes += int64(*e.TxBytes)
		}
		if e.RxBytes != nil {
			b.RxBytes += int64(*e.RxBytes)
		}
		usage[mac] = b
	}
	c.store.SetClientDailyUsage(usage)
	return nil
}

// eventBridge consumes the push stream and fans each frame into the matching
// store path. Lag is reported and survived; the stream replays from the
// oldest retained frame and the periodic refresh heals any gap.
func (c *Controller) eventBridge(wsc *wsev.Client) func(context.Context) {
	return func(ctx context.Context) {
		sub := wsc.Subscribe()
		defer sub.Close()
		for {
			msg, err := sub.Recv(ctx)
			if err != nil {
				var lagged *stream.LaggedError
				if errors.As(err, &lagged) {
					metrics.ObserveSubscriberLag(lagged.Missed)
					c.logger.Warn().Uint64(log.FieldLagged, lagged.Missed).Msg("push stream consumer lagged")
					continue
				}
				return
			}
			c.dispatchStream(msg)
		}
	}
}

func (c *Controller) dispatchStream(msg wsev.Message) {
	now := time.Now()
	switch convert.ClassifyStream(msg.Key) {
	case convert.StreamKindDeviceSync:
		if update, ok := convert.StreamDeviceStats(msg); ok {
			c.statsQ.Push(update)
		}
	case convert.StreamKindClientSync:
		if cl, ok := convert.StreamClient(msg, now); ok {
			c.store.Clients.Upsert(cl.Mac, cl)
		}
	default:
		e := convert.StreamEvent(msg, now)
		if c.markEventSeen(e.ID) {
			c.store.PublishEvent(e)
		}
	}
}
