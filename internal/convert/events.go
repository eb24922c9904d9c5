// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package convert

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
	"github.com/ManuGH/unictl/internal/unifi/wsev"
)

// StreamKind tells the event bridge what a push message carries.
type StreamKind uint8

const (
	StreamKindEvent StreamKind = iota
	StreamKindDeviceSync
	StreamKindClientSync
)

// ClassifyStream buckets a push message by its key.
func ClassifyStream(key string) StreamKind {
	switch {
	case strings.HasSuffix(key, "device:sync"), strings.HasSuffix(key, "device:update"):
		return StreamKindDeviceSync
	case strings.HasSuffix(key, "sta:sync"):
		return StreamKindClientSync
	default:
		return StreamKindEvent
	}
}

// StreamEvent maps a push message onto an event log entry.
func StreamEvent(msg wsev.Message, now time.Time) domain.Event {
	e := domain.Event{
		Timestamp: now,
		Category:  msg.Subsystem,
		Severity:  SeverityFromKey(msg.Key, false),
		EventType: msg.Key,
		Message:   msg.Message,
	}
	if id, ok := msg.Extra["_id"].(string); ok {
		e.ID = id
	}
	if ms, ok := msg.Extra["time"].(float64); ok && ms > 0 {
		e.Timestamp = time.UnixMilli(int64(ms)).UTC()
	}
	e.DeviceMac = macOpt(extraString(msg.Extra, "ap"), extraString(msg.Extra, "sw"), extraString(msg.Extra, "gw"))
	e.ClientMac = macOpt(extraString(msg.Extra, "user"), extraString(msg.Extra, "guest"))
	return e
}

// StreamDeviceStats re-decodes a device sync entry through the legacy device
// shape and extracts the stats envelope. ok is false when the entry carries
// no usable MAC.
func StreamDeviceStats(msg wsev.Message) (domain.StatsUpdate, bool) {
	var rec legacy.DeviceRecord
	if !redecode(msg.Extra, &rec) {
		return domain.StatsUpdate{}, false
	}
	up, err := LegacyDeviceStats(rec)
	if err != nil {
		return domain.StatsUpdate{}, false
	}
	return up, true
}

// StreamClient re-decodes a station sync entry through the legacy station
// shape. ok is false when the entry carries no usable MAC.
func StreamClient(msg wsev.Message, now time.Time) (domain.Client, bool) {
	var rec legacy.StaRecord
	if !redecode(msg.Extra, &rec) {
		return domain.Client{}, false
	}
	c, err := LegacyClient(rec, now)
	if err != nil {
		return domain.Client{}, false
	}
	return c, true
}

// redecode funnels a loosely typed frame entry through its JSON form into a
// typed record. The double pass costs little at stream rates and keeps one
// decoding path for polls and pushes.
func redecode(extra map[string]any, out any) bool {
	if extra == nil {
		return false
	}
	raw, err := json.Marshal(extra)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func extraString(extra map[string]any, key string) string {
	s, _ := extra[key].(string)
	return s
}
