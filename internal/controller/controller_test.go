// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/unifi"
	"github.com/ManuGH/unictl/internal/unifi/wsev"
)

const (
	fakeSiteID   = "5c9e4fd2-7e16-4b61-9a3b-1f2d3c4b5a69"
	fakeDeviceID = "6e2f10b4-6e10-4f0e-9a3b-1f2d3c4b5a70"
	fakeClientID = "7f3a21c5-8f21-4a1f-8b4c-2e3f4a5b6c71"
	fakeDevMac   = "aa:bb:cc:00:11:22"
	fakeStaMac   = "dd:ee:ff:00:11:22"
)

// fakeConsole emulates a UniFi OS console: probe, session login, the
// integration API under /proxy/network/integration and the session API under
// /proxy/network/api.
type fakeConsole struct {
	mu         sync.Mutex
	logins     int
	apiKeys    []string
	statsCalls int
	restPosts  map[string]string // path -> body
	devMgrCmds []map[string]any
	staMgrCmds []map[string]any
}

func newFakeConsole() *fakeConsole {
	return &fakeConsole{restPosts: make(map[string]string)}
}

func (f *fakeConsole) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			w.Header().Set("X-Csrf-Token", "csrf-1")
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/api/auth/login":
			f.mu.Lock()
			f.logins++
			f.mu.Unlock()
			http.SetCookie(w, &http.Cookie{Name: "TOKEN", Value: "session-1", Path: "/"})
			writeEnvelope(w, nil)
		case r.URL.Path == "/api/auth/logout":
			writeEnvelope(w, nil)
		case strings.HasPrefix(r.URL.Path, "/proxy/network/integration/"):
			f.integration(w, r)
		case strings.HasPrefix(r.URL.Path, "/proxy/network/api/"):
			f.session(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeConsole) integration(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("X-API-KEY"))
	f.mu.Unlock()

	rest := strings.TrimPrefix(r.URL.Path, "/proxy/network/integration/")
	if rest == "v1/info" {
		writeJSON(w, map[string]any{"applicationVersion": "9.0.114"})
		return
	}
	if rest == "v1/sites" {
		writePage(w, []map[string]any{{
			"id":                fakeSiteID,
			"internalReference": "default",
			"name":              "Default",
		}})
		return
	}

	kind := strings.TrimPrefix(rest, "v1/sites/"+fakeSiteID+"/")
	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.restPosts[kind] = string(body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{}`)
		return
	}

	switch kind {
	case "devices":
		writePage(w, []map[string]any{{
			"id":         fakeDeviceID,
			"name":       "Gateway",
			"model":      "UDM-Pro",
			"macAddress": "AA:BB:CC:00:11:22",
			"ipAddress":  "192.0.2.1",
			"state":      "ONLINE",
			"features":   []string{"switching"},
		}})
	case "devices/" + fakeDeviceID:
		writeJSON(w, map[string]any{
			"id":         fakeDeviceID,
			"name":       "Gateway",
			"model":      "UDM-Pro",
			"macAddress": "AA:BB:CC:00:11:22",
			"ipAddress":  "192.0.2.1",
			"state":      "ONLINE",
			"features":   []string{"switching"},
			"interfaces": map[string]any{
				"ports": []map[string]any{{"idx": 1, "name": "Port 1", "connector": "RJ45"}},
			},
		})
	case "devices/" + fakeDeviceID + "/statistics/latest":
		f.mu.Lock()
		f.statsCalls++
		f.mu.Unlock()
		writeJSON(w, map[string]any{"cpuUtilizationPct": 12.5, "memoryUtilizationPct": 41.0})
	case "clients":
		writePage(w, []map[string]any{{
			"id":         fakeClientID,
			"name":       "laptop",
			"macAddress": "DD:EE:FF:00:11:22",
			"ipAddress":  "192.0.2.50",
			"type":       "WIRELESS",
		}})
	case "acl-rules", "dns/policies", "hotspot/vouchers", "traffic-matching-lists":
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"statusCode":404,"message":"not found"}`)
	default:
		writePage(w, nil)
	}
}

func (f *fakeConsole) session(w http.ResponseWriter, r *http.Request) {
	suffix := strings.TrimPrefix(r.URL.Path, "/proxy/network/api/s/default/")
	switch suffix {
	case "cmd/devmgr", "cmd/stamgr":
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		if suffix == "cmd/devmgr" {
			f.devMgrCmds = append(f.devMgrCmds, payload)
		} else {
			f.staMgrCmds = append(f.staMgrCmds, payload)
		}
		f.mu.Unlock()
		writeEnvelope(w, nil)
	default:
		writeEnvelope(w, nil)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writePage(w http.ResponseWriter, data []map[string]any) {
	if data == nil {
		data = []map[string]any{}
	}
	writeJSON(w, map[string]any{
		"offset":     0,
		"limit":      100,
		"count":      len(data),
		"totalCount": len(data),
		"data":       data,
	})
}

func writeEnvelope(w http.ResponseWriter, data []map[string]any) {
	if data == nil {
		data = []map[string]any{}
	}
	writeJSON(w, map[string]any{
		"meta": map[string]any{"rc": "ok"},
		"data": data,
	})
}

func testConfig(url string) Config {
	return Config{
		URL:      url,
		Site:     "default",
		Auth:     AuthHybrid,
		APIKey:   "test-key",
		Username: "admin",
		Password: "secret",
		Timeout:  5 * time.Second,
	}
}

func verifyNoLeaks(t *testing.T) {
	goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func connectedController(t *testing.T) (*Controller, *fakeConsole) {
	t.Helper()
	fake := newFakeConsole()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.NoError(t, c.Connect(t.Context()))
	t.Cleanup(func() { c.Disconnect(t.Context()) })
	return c, fake
}

func TestConnectLifecycle(t *testing.T) {
	defer verifyNoLeaks(t)

	fake := newFakeConsole()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Connect(t.Context()))
	assert.True(t, c.Connected())

	siteID, slug := c.Site()
	assert.Equal(t, fakeSiteID, siteID)
	assert.Equal(t, "default", slug)

	fake.mu.Lock()
	logins := fake.logins
	keys := fake.apiKeys
	fake.mu.Unlock()
	assert.Equal(t, 1, logins)
	require.NotEmpty(t, keys)
	assert.Equal(t, "test-key", keys[0])

	devices := c.Devices()
	require.Len(t, devices, 1)
	d := devices[0]
	assert.Equal(t, domain.MustMac(fakeDevMac), d.Mac)
	assert.Equal(t, domain.DeviceGateway, d.Type)
	assert.InDelta(t, 12.5, d.Stats.CPUPercent.Or(0), 0.001)

	c.Disconnect(t.Context())
	assert.Equal(t, domain.PhaseDisconnected, c.ConnectionState().Phase)
}

func TestConnectSiteUUIDShortCircuit(t *testing.T) {
	fake := newFakeConsole()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Site = fakeSiteID
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Connect(t.Context()))
	defer c.Disconnect(t.Context())

	siteID, slug := c.Site()
	assert.Equal(t, fakeSiteID, siteID)
	// The slug is recovered from the site listing so legacy paths work.
	assert.Equal(t, "default", slug)
}

func TestConnectUnknownSiteFails(t *testing.T) {
	fake := newFakeConsole()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Site = "does-not-exist"
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	err = c.Connect(t.Context())
	var snf *unifi.SiteNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "does-not-exist", snf.Name)
	assert.Equal(t, domain.PhaseFailed, c.ConnectionState().Phase)
}

func TestOptionalEndpointsDegradeToEmpty(t *testing.T) {
	c, _ := connectedController(t)

	// The fake answers 404 for these kinds; connect succeeded anyway and the
	// mirrors are empty instead of failed.
	assert.Empty(t, c.AclRules())
	assert.Empty(t, c.DnsPolicies())
	assert.Empty(t, c.Vouchers())
	assert.Empty(t, c.TrafficMatchingLists())
	assert.True(t, c.Connected())
}

func TestClientPollMirrorsStations(t *testing.T) {
	c, _ := connectedController(t)

	require.Eventually(t, func() bool {
		return len(c.Clients()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	cl, ok := c.Client(domain.MustMac(fakeStaMac))
	require.True(t, ok)
	assert.Equal(t, "laptop", cl.Name)
	assert.Equal(t, domain.IDKindUUID, cl.ID.Kind)
}

func TestExecuteRoutesDeviceActionOverREST(t *testing.T) {
	c, fake := connectedController(t)

	_, err := c.Execute(t.Context(), RestartDevice{Mac: domain.MustMac(fakeDevMac)})
	require.NoError(t, err)

	fake.mu.Lock()
	body := fake.restPosts["devices/"+fakeDeviceID+"/actions"]
	fake.mu.Unlock()
	assert.JSONEq(t, `{"action":"RESTART"}`, body)
}

func TestExecuteRoutesClientActionOverREST(t *testing.T) {
	c, fake := connectedController(t)

	require.Eventually(t, func() bool {
		return len(c.Clients()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	_, err := c.Execute(t.Context(), BlockClient{Mac: domain.MustMac(fakeStaMac)})
	require.NoError(t, err)

	fake.mu.Lock()
	body := fake.restPosts["clients/"+fakeClientID+"/actions"]
	fake.mu.Unlock()
	assert.JSONEq(t, `{"action":"BLOCK"}`, body)
}

func TestExecuteSessionOnlyCommandUsesDevMgr(t *testing.T) {
	c, fake := connectedController(t)

	_, err := c.Execute(t.Context(), UpgradeDevice{Mac: domain.MustMac(fakeDevMac)})
	require.NoError(t, err)

	fake.mu.Lock()
	cmds := fake.devMgrCmds
	fake.mu.Unlock()
	require.Len(t, cmds, 1)
	assert.Equal(t, "upgrade", cmds[0]["cmd"])
	assert.Equal(t, fakeDevMac, cmds[0]["mac"])
}

func TestExecuteRejectedWhileDisconnected(t *testing.T) {
	c, err := New(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Execute(t.Context(), Speedtest{})
	assert.True(t, errors.Is(err, unifi.ErrControllerDisconnected))
}

func TestExecuteUnknownDeviceFails(t *testing.T) {
	c, _ := connectedController(t)

	_, err := c.Execute(t.Context(), RestartDevice{ID: domain.LegacyID("missing")})
	var dnf *unifi.DeviceNotFoundError
	require.ErrorAs(t, err, &dnf)
}

func TestOneshotConnectsAndDisconnects(t *testing.T) {
	fake := newFakeConsole()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	var seen int
	err := Oneshot(t.Context(), testConfig(srv.URL), func(c *Controller) error {
		seen = len(c.Devices())
		assert.True(t, c.Connected())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestReadThroughAccessors(t *testing.T) {
	c, _ := connectedController(t)

	info, err := c.AppInfo(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "9.0.114", info.ApplicationVersion)

	d, err := c.DeviceDetails(t.Context(), domain.EntityID{}, domain.MustMac(fakeDevMac))
	require.NoError(t, err)
	require.Len(t, d.Ports, 1)
	assert.Equal(t, "Port 1", d.Ports[0].Name)

	// Session surface answers the default empty envelope.
	_, err = c.SysInfo(t.Context())
	require.NoError(t, err)
	admins, err := c.Admins(t.Context())
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestDeviceStatsPollUsesREST(t *testing.T) {
	c, fake := connectedController(t)

	// No push stream is running, so the fast poll hits the integration
	// statistics endpoint for each mirrored device: once during the connect
	// refresh and again on every poll run.
	require.Eventually(t, func() bool {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return fake.statsCalls >= 2
	}, 5*time.Second, 20*time.Millisecond)

	d, ok := c.Device(domain.MustMac(fakeDevMac))
	require.True(t, ok)
	assert.InDelta(t, 12.5, d.Stats.CPUPercent.Or(0), 0.001)
}

func TestStreamDropPublishesReconnecting(t *testing.T) {
	c, fake := connectedController(t)

	c.applyStreamState(wsev.StreamState{Attempt: 2})
	st := c.ConnectionState()
	assert.Equal(t, domain.PhaseReconnecting, st.Phase)
	assert.Equal(t, 2, st.Attempt)

	// Commands still flow while the stream recovers; REST is unaffected.
	_, err := c.Execute(t.Context(), RestartDevice{Mac: domain.MustMac(fakeDevMac)})
	require.NoError(t, err)
	fake.mu.Lock()
	body := fake.restPosts["devices/"+fakeDeviceID+"/actions"]
	fake.mu.Unlock()
	assert.JSONEq(t, `{"action":"RESTART"}`, body)

	c.applyStreamState(wsev.StreamState{Connected: true})
	assert.Equal(t, domain.PhaseConnected, c.ConnectionState().Phase)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.Defaults()
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.BandwidthPollInterval)

	disabled := Config{BandwidthPollInterval: -1}.Defaults()
	assert.Equal(t, time.Duration(-1), disabled.BandwidthPollInterval)

	custom := Config{BandwidthPollInterval: 10 * time.Second}.Defaults()
	assert.Equal(t, 10*time.Second, custom.BandwidthPollInterval)
}

func TestConfigValidation(t *testing.T) {
	valid := testConfig("https://controller.local")
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url", func(c *Config) { c.URL = "" }},
		{"relative url", func(c *Config) { c.URL = "controller.local" }},
		{"missing site", func(c *Config) { c.Site = "" }},
		{"hybrid without password", func(c *Config) { c.Password = "" }},
		{"api key mode without key", func(c *Config) { c.Auth = AuthAPIKey; c.APIKey = "" }},
		{"credentials without username", func(c *Config) { c.Auth = AuthCredentials; c.Username = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
