// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/unictl/internal/domain"
)

func dev(mac string, name string) domain.Device {
	return domain.Device{
		Meta: domain.Meta{ID: domain.LegacyID(mac), Source: domain.SourceREST, UpdatedAt: time.Now()},
		Mac:  domain.MustMac(mac),
		Name: name,
	}
}

func TestCollectionSnapshotSorted(t *testing.T) {
	c := NewCollection[string, int]("test")
	c.Upsert("b", 2)
	c.Upsert("a", 1)
	c.Upsert("c", 3)
	assert.Equal(t, []int{1, 2, 3}, c.Snapshot())
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}

func TestCollectionReplaceDeletesAbsentKeys(t *testing.T) {
	c := NewCollection[string, int]("test")
	c.Upsert("a", 1)
	c.Upsert("b", 2)

	c.Replace(map[string]int{"b": 20, "c": 30})

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 20, v)
	assert.Equal(t, 2, c.Len())
}

func TestCollectionUpsertIdempotent(t *testing.T) {
	c := NewCollection[string, int]("test")
	c.Upsert("a", 1)
	c.Upsert("a", 1)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []int{1}, c.Snapshot())
}

func TestCollectionWatchObservesLatestOnly(t *testing.T) {
	c := NewCollection[string, int]("test")
	sub := c.Subscribe()
	defer sub.Close()

	c.Upsert("a", 1)
	c.Upsert("b", 2)
	c.Upsert("c", 3)

	got, err := sub.Next(t.Context())
	require.NoError(t, err)
	// A slow subscriber skips intermediate snapshots but always lands on
	// the current one.
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCollectionSilentBatchPublishesOnce(t *testing.T) {
	c := NewCollection[string, int]("test")
	c.Upsert("seed", 0)
	sub := c.Subscribe()
	defer sub.Close()
	_, err := sub.Next(t.Context())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c.UpsertSilent(fmt.Sprintf("k%d", i), i)
	}
	c.Flush()

	got, err := sub.Next(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 11)

	// A second Flush without writes publishes nothing.
	c.Flush()
	v, ok := c.Get("k3")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestCollectionUpdateMissingKey(t *testing.T) {
	c := NewCollection[string, int]("test")
	assert.False(t, c.Update("nope", func(v int) int { return v + 1 }))
	c.Upsert("a", 1)
	assert.True(t, c.Update("a", func(v int) int { return v + 1 }))
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
}

func TestApplyStatsUpdateFillsOnlyCarriedFields(t *testing.T) {
	s := New()
	d := dev("aa:bb:cc:00:11:22", "gw")
	d.Stats.CPUPercent = domain.Some(10.0)
	d.ClientCount = domain.Some(5)
	s.Devices.Upsert(d.Mac, d)

	ok := s.ApplyStatsUpdate(domain.StatsUpdate{
		Mac: d.Mac,
		Stats: domain.DeviceStats{
			MemoryPercent: domain.Some(40.0),
		},
		WanIPv6: domain.Some("2001:db8::1"),
	})
	require.True(t, ok)

	got, _ := s.Devices.Get(d.Mac)
	assert.InDelta(t, 10.0, got.Stats.CPUPercent.Or(0), 0.001) // untouched
	assert.InDelta(t, 40.0, got.Stats.MemoryPercent.Or(0), 0.001)
	assert.Equal(t, 5, got.ClientCount.Or(0)) // update carried nothing
	assert.Equal(t, "2001:db8::1", got.WanIPv6.Or(""))
}

func TestApplyStatsUpdateUnknownDeviceDropped(t *testing.T) {
	s := New()
	assert.False(t, s.ApplyStatsUpdate(domain.StatsUpdate{Mac: domain.MustMac("aa:bb:cc:00:11:99")}))
}

func TestEventLogBounded(t *testing.T) {
	s := New()
	for i := 0; i < eventLogCapacity+50; i++ {
		s.PublishEvent(domain.Event{ID: fmt.Sprintf("e-%d", i)})
	}
	log := s.RecentEvents()
	require.Len(t, log, eventLogCapacity)
	assert.Equal(t, "e-50", log[0].ID)
	assert.Equal(t, fmt.Sprintf("e-%d", eventLogCapacity+49), log[len(log)-1].ID)
}

func TestEventSubscriberReceivesPublished(t *testing.T) {
	s := New()
	sub := s.SubscribeEvents()
	defer sub.Close()

	s.PublishEvent(domain.Event{ID: "e-1", Severity: domain.SeverityWarning})
	e, err := sub.Recv(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "e-1", e.ID)
}

func TestDeviceResolutionByID(t *testing.T) {
	s := New()
	d := dev("aa:bb:cc:00:11:22", "ap")
	d.ID = domain.LegacyID("5f2c0a")
	s.Devices.Upsert(d.Mac, d)

	got, ok := s.DeviceByID("5f2c0a")
	require.True(t, ok)
	assert.Equal(t, d.Mac, got.Mac)

	mac, ok := s.ResolveDeviceMac("5f2c0a")
	require.True(t, ok)
	assert.Equal(t, d.Mac, mac)

	_, ok = s.DeviceByID("missing")
	assert.False(t, ok)
}

func TestByIndexFollowsPublishes(t *testing.T) {
	s := New()
	d := dev("aa:bb:cc:00:11:22", "ap")
	d.ID = domain.LegacyID("5f2c0a")

	// Silent writes stay invisible to the index until the batch publishes.
	s.Devices.UpsertSilent(d.Mac, d)
	_, ok := s.DeviceByID("5f2c0a")
	assert.False(t, ok)
	s.Devices.Flush()
	got, ok := s.DeviceByID("5f2c0a")
	require.True(t, ok)
	assert.Equal(t, d.Mac, got.Mac)

	// Replace rebuilds the index; dropped entities disappear from it too.
	other := dev("aa:bb:cc:00:11:33", "sw")
	other.ID = domain.LegacyID("7d4e1b")
	s.Devices.Replace(map[domain.MacAddress]domain.Device{other.Mac: other})
	_, ok = s.DeviceByID("5f2c0a")
	assert.False(t, ok)
	_, ok = s.DeviceByID("7d4e1b")
	assert.True(t, ok)
}

func TestClientResolutionByID(t *testing.T) {
	s := New()
	cl := domain.Client{
		Meta: domain.Meta{ID: domain.LegacyID("c-01"), Source: domain.SourceREST, UpdatedAt: time.Now()},
		Mac:  domain.MustMac("dd:ee:ff:00:11:22"),
	}
	s.Clients.Upsert(cl.Mac, cl)

	got, ok := s.ClientByID("c-01")
	require.True(t, ok)
	assert.Equal(t, cl.Mac, got.Mac)

	_, ok = s.ClientByID("missing")
	assert.False(t, ok)
}

func TestScalarWatches(t *testing.T) {
	s := New()
	_, ok := s.MonthlyWanBytes()
	assert.False(t, ok)

	s.SetMonthlyWanBytes(domain.WanBytes{TxBytes: 10, RxBytes: 20})
	b, ok := s.MonthlyWanBytes()
	require.True(t, ok)
	assert.Equal(t, int64(20), b.RxBytes)

	s.SetHealth([]domain.HealthSummary{{Subsystem: "wan", Status: "ok"}})
	h, ok := s.Health()
	require.True(t, ok)
	require.Len(t, h, 1)
	assert.Equal(t, "wan", h[0].Subsystem)

	usage := map[domain.MacAddress]domain.WanBytes{
		domain.MustMac("aa:bb:cc:dd:ee:01"): {TxBytes: 1, RxBytes: 2},
	}
	s.SetClientDailyUsage(usage)
	u, ok := s.ClientDailyUsage()
	require.True(t, ok)
	assert.Equal(t, int64(2), u[domain.MustMac("aa:bb:cc:dd:ee:01")].RxBytes)
}
