// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package legacy

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ListClients fetches all currently connected stations.
func (c *Client) ListClients(ctx context.Context) ([]StaRecord, error) {
	var out []StaRecord
	err := c.do(ctx, http.MethodGet, c.sitePath("stat/sta"), nil, &out)
	return out, err
}

// ListDevices fetches all devices with the legacy stat fields (CPU, memory,
// uplink rates) the integration API omits for non-gateways.
func (c *Client) ListDevices(ctx context.Context) ([]DeviceRecord, error) {
	var out []DeviceRecord
	err := c.do(ctx, http.MethodGet, c.sitePath("stat/device"), nil, &out)
	return out, err
}

// Health fetches the per-subsystem health summaries.
func (c *Client) Health(ctx context.Context) ([]HealthRecord, error) {
	var out []HealthRecord
	err := c.do(ctx, http.MethodGet, c.sitePath("stat/health"), nil, &out)
	return out, err
}

// SysInfo fetches controller version information.
func (c *Client) SysInfo(ctx context.Context) (SysInfoRecord, error) {
	var out []SysInfoRecord
	if err := c.do(ctx, http.MethodGet, c.sitePath("stat/sysinfo"), nil, &out); err != nil {
		return SysInfoRecord{}, err
	}
	if len(out) == 0 {
		return SysInfoRecord{}, nil
	}
	return out[0], nil
}

// ListEvents fetches the most recent events, newest first.
func (c *Client) ListEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []EventRecord
	err := c.do(ctx, http.MethodPost, c.sitePath("stat/event"), map[string]any{"_limit": limit}, &out)
	return out, err
}

// ListAlarms fetches unarchived alarms.
func (c *Client) ListAlarms(ctx context.Context) ([]AlarmRecord, error) {
	var out []AlarmRecord
	err := c.do(ctx, http.MethodPost, c.sitePath("stat/alarm"), map[string]any{"archived": false}, &out)
	return out, err
}

// Report queries a historical statistics report. interval is "5minutes",
// "hourly", or "daily"; class is "site", "gw", or "user". macs narrows
// .user reports to specific clients.
func (c *Client) Report(ctx context.Context, interval, class string, attrs []string, start, end time.Time, macs []string) ([]ReportEntry, error) {
	body := map[string]any{
		"attrs": attrs,
		"start": start.UnixMilli(),
		"end":   end.UnixMilli(),
	}
	if len(macs) > 0 {
		body["macs"] = macs
	}
	var out []ReportEntry
	p := c.sitePath(fmt.Sprintf("stat/report/%s.%s", interval, class))
	err := c.do(ctx, http.MethodPost, p, body, &out)
	return out, err
}

// SiteDPI fetches per-application deep packet inspection counters.
func (c *Client) SiteDPI(ctx context.Context) ([]DPIRecord, error) {
	var out []struct {
		ByApp []DPIRecord `json:"by_app"`
	}
	if err := c.do(ctx, http.MethodPost, c.sitePath("stat/sitedpi"), map[string]any{"type": "by_app"}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].ByApp, nil
}

// DevMgr issues a device-manager command, e.g. {"cmd":"restart","mac":...}.
func (c *Client) DevMgr(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, c.sitePath("cmd/devmgr"), payload, nil)
}

// StaMgr issues a station-manager command, e.g. {"cmd":"block-sta","mac":...}.
func (c *Client) StaMgr(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, c.sitePath("cmd/stamgr"), payload, nil)
}

// SiteMgr issues a site-manager command (invite-admin, add-site, ...).
func (c *Client) SiteMgr(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, c.sitePath("cmd/sitemgr"), payload, nil)
}

// ListBackups lists stored backup files.
func (c *Client) ListBackups(ctx context.Context) ([]BackupRecord, error) {
	var out []BackupRecord
	err := c.do(ctx, http.MethodPost, c.sitePath("cmd/backup"), map[string]any{"cmd": "list-backups"}, &out)
	return out, err
}

// DeleteBackup removes one backup file.
func (c *Client) DeleteBackup(ctx context.Context, filename string) error {
	return c.do(ctx, http.MethodPost, c.sitePath("cmd/backup"), map[string]any{"cmd": "delete-backup", "filename": filename}, nil)
}

// CreateBackup starts a controller backup covering the given number of
// days; -1 means everything.
func (c *Client) CreateBackup(ctx context.Context, days int) error {
	return c.do(ctx, http.MethodPost, c.sitePath("cmd/system"), map[string]any{"cmd": "backup", "days": days}, nil)
}

// SystemCmd issues a raw system command (reboot, poweroff).
func (c *Client) SystemCmd(ctx context.Context, cmd string) error {
	return c.do(ctx, http.MethodPost, c.sitePath("cmd/system"), map[string]any{"cmd": cmd}, nil)
}

// ListAdmins lists site administrators.
func (c *Client) ListAdmins(ctx context.Context) ([]AdminRecord, error) {
	var out []AdminRecord
	err := c.do(ctx, http.MethodGet, c.sitePath("list/admin"), nil, &out)
	return out, err
}

// ListAccounts lists RADIUS accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]AccountRecord, error) {
	var out []AccountRecord
	err := c.do(ctx, http.MethodGet, c.sitePath("rest/account"), nil, &out)
	return out, err
}

// SelfSites lists the sites visible to the logged-in user.
func (c *Client) SelfSites(ctx context.Context) ([]SiteRecord, error) {
	var out []SiteRecord
	err := c.do(ctx, http.MethodGet, c.apiPath("self/sites"), nil, &out)
	return out, err
}

// AddSite creates a new site with the given description.
func (c *Client) AddSite(ctx context.Context, desc string) error {
	return c.SiteMgr(ctx, map[string]any{"cmd": "add-site", "desc": desc})
}

// DeleteSite removes a site by its internal id.
func (c *Client) DeleteSite(ctx context.Context, siteID string) error {
	return c.SiteMgr(ctx, map[string]any{"cmd": "delete-site", "site": siteID})
}
