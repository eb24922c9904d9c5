// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// DeviceAction is a device lifecycle action, transmitted literally.
type DeviceAction string

const (
	ActionRestart   DeviceAction = "RESTART"
	ActionAdopt     DeviceAction = "ADOPT"
	ActionLocateOn  DeviceAction = "LOCATE_ON"
	ActionLocateOff DeviceAction = "LOCATE_OFF"
)

// PortAction is a port-level action, transmitted literally.
type PortAction string

const ActionPowerCycle PortAction = "POWER_CYCLE"

// Device is the wire form of a device in the list endpoint. Attributes
// preserves the full decoded object for fields the firmware adds beyond the
// typed set.
type Device struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Model             string   `json:"model"`
	MacAddress        string   `json:"macAddress"`
	IPAddress         string   `json:"ipAddress"`
	State             string   `json:"state"`
	FirmwareVersion   string   `json:"firmwareVersion"`
	FirmwareUpdatable *bool    `json:"firmwareUpdatable"`
	Features          []string `json:"features"`

	Attributes map[string]any `json:"-"`
}

func (d *Device) UnmarshalJSON(b []byte) error {
	type alias Device
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	a.Attributes = raw
	*d = Device(a)
	return nil
}

// DevicePort is one port entry in the device detail.
type DevicePort struct {
	Idx       int    `json:"idx"`
	Name      string `json:"name"`
	Connector string `json:"connector"`
	Enabled   *bool  `json:"enabled"`
	SpeedMbps *int   `json:"speedMbps"`
	PoE       *bool  `json:"poeEnabled"`
	Up        *bool  `json:"up"`
}

// DeviceRadio is one radio entry in the device detail.
type DeviceRadio struct {
	FrequencyGHz float64 `json:"frequencyGHz"`
	Channel      *int    `json:"channel"`
	WidthMHz     *int    `json:"channelWidthMHz"`
	TxPowerMode  string  `json:"txPowerMode"`
}

// DeviceDetails is the device detail endpoint shape.
type DeviceDetails struct {
	Device
	Interfaces struct {
		Ports  []DevicePort  `json:"ports"`
		Radios []DeviceRadio `json:"radios"`
	} `json:"interfaces"`
	UplinkDeviceID string `json:"uplinkDeviceId"`
}

// DeviceStatistics is the statistics/latest endpoint shape. Pointer fields
// distinguish absent from zero.
type DeviceStatistics struct {
	UptimeSec            *int64   `json:"uptimeSec"`
	CPUUtilizationPct    *float64 `json:"cpuUtilizationPct"`
	MemoryUtilizationPct *float64 `json:"memoryUtilizationPct"`
	LoadAverage1Min      *float64 `json:"loadAverage1Min"`
	LoadAverage5Min      *float64 `json:"loadAverage5Min"`
	LoadAverage15Min     *float64 `json:"loadAverage15Min"`
	Uplink               *struct {
		TxRateBps *int64 `json:"txRateBps"`
		RxRateBps *int64 `json:"rxRateBps"`
	} `json:"uplink"`
}

// ListDevices returns one page of devices.
func (c *Client) ListDevices(ctx context.Context, siteID string, offset int64, limit int32) (Page[Device], error) {
	return get[Page[Device]](ctx, c, sitePath(siteID, "devices"), pageQuery(offset, limit))
}

// GetDevice fetches the device detail.
func (c *Client) GetDevice(ctx context.Context, siteID, deviceID string) (DeviceDetails, error) {
	return get[DeviceDetails](ctx, c, sitePath(siteID, "devices/"+url.PathEscape(deviceID)), nil)
}

// GetDeviceStats fetches the latest device statistics.
func (c *Client) GetDeviceStats(ctx context.Context, siteID, deviceID string) (DeviceStatistics, error) {
	return get[DeviceStatistics](ctx, c, sitePath(siteID, "devices/"+url.PathEscape(deviceID)+"/statistics/latest"), nil)
}

// AdoptDevice requests adoption of an unmanaged device by MAC.
func (c *Client) AdoptDevice(ctx context.Context, siteID, mac string) error {
	body := map[string]any{"macAddress": mac, "ignoreDeviceLimit": false}
	return c.do(ctx, "POST", sitePath(siteID, "devices"), nil, body, nil)
}

// DeviceActionRequest triggers a device action.
func (c *Client) DeviceActionRequest(ctx context.Context, siteID, deviceID string, action DeviceAction) error {
	body := map[string]string{"action": string(action)}
	return c.do(ctx, "POST", sitePath(siteID, "devices/"+url.PathEscape(deviceID)+"/actions"), nil, body, nil)
}

// PortActionRequest triggers a port action.
func (c *Client) PortActionRequest(ctx context.Context, siteID, deviceID string, portIdx int, action PortAction) error {
	body := map[string]string{"action": string(action)}
	p := sitePath(siteID, "devices/"+url.PathEscape(deviceID)+"/interfaces/ports/"+strconv.Itoa(portIdx)+"/actions")
	return c.do(ctx, "POST", p, nil, body, nil)
}

// DeleteDevice removes a device from the site.
func (c *Client) DeleteDevice(ctx context.Context, siteID, deviceID string) error {
	return c.delete(ctx, sitePath(siteID, "devices/"+url.PathEscape(deviceID)))
}
