// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/unictl/internal/unifi"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/integration/", srv.Client())
}

func TestUnauthorizedMapsToInvalidAPIKey(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Info(t.Context())
	assert.ErrorIs(t, err, unifi.ErrInvalidAPIKey)
}

func TestNotFoundIsDistinctSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.ListAclRules(t.Context(), "s1", 0, 25)
	assert.ErrorIs(t, err, unifi.ErrNotFound)
}

func TestIntegrationErrorParsesMessageAndCode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "vlan in use", "code": "CONFLICT"})
	}))

	_, err := c.GetNetwork(t.Context(), "s1", "n1")
	var ie *unifi.IntegrationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, http.StatusUnprocessableEntity, ie.Status)
	assert.Equal(t, "vlan in use", ie.Message)
	assert.Equal(t, "CONFLICT", ie.Code)
}

func TestIntegrationErrorFallsBackToRawBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream sad"))
	}))

	_, err := c.Info(t.Context())
	var ie *unifi.IntegrationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, http.StatusBadGateway, ie.Status)
	assert.Equal(t, "upstream sad", ie.Message)
}

func TestDeserializationErrorKeepsBodyPreview(t *testing.T) {
	long := strings.Repeat("x", 500)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(long))
	}))

	_, err := c.Info(t.Context())
	var de *unifi.DeserializationError
	require.ErrorAs(t, err, &de)
	assert.Len(t, de.BodyPreview, bodyPreviewLimit)
	assert.True(t, strings.HasPrefix(long, de.BodyPreview))
}

func TestTransportErrorWrapped(t *testing.T) {
	c := New("http://127.0.0.1:1/integration/", &http.Client{})
	_, err := c.Info(t.Context())
	var te *unifi.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestDeviceActionWirePath(t *testing.T) {
	var gotPath, gotBody string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))

	err := c.DeviceActionRequest(t.Context(), "site-1", "dev-1", ActionRestart)
	require.NoError(t, err)
	assert.Equal(t, "/integration/v1/sites/site-1/devices/dev-1/actions", gotPath)
	assert.JSONEq(t, `{"action":"RESTART"}`, gotBody)
}

func TestPortActionWirePath(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	err := c.PortActionRequest(t.Context(), "s", "d", 7, ActionPowerCycle)
	require.NoError(t, err)
	assert.Equal(t, "/integration/v1/sites/s/devices/d/interfaces/ports/7/actions", gotPath)
}

func TestDeviceAttributesPreserved(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"offset":0,"limit":25,"count":1,"totalCount":1,
			"data":[{"id":"d1","macAddress":"aa:bb:cc:00:11:22","model":"USW-24","vendorExtension":{"foo":1}}]}`))
	}))

	page, err := c.ListDevices(t.Context(), "s1", 0, 25)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	d := page.Data[0]
	assert.Equal(t, "USW-24", d.Model)
	assert.Contains(t, d.Attributes, "vendorExtension")
}
