// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/unictl/internal/controller"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctrl, err := controller.New(controller.Config{
		URL:      "https://controller.local",
		Site:     "default",
		Auth:     controller.AuthAPIKey,
		APIKey:   "key",
		Username: "admin",
		Password: "secret",
	})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)

	srv := httptest.NewServer(New(ctrl, "127.0.0.1:0").Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthzAlwaysOK(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestReadyzUnavailableWhileDisconnected(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "disconnected", body["phase"])
}

func TestStatuszReportsEntityCounts(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/statusz")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Phase    string         `json:"phase"`
		Entities map[string]int `json:"entities"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "disconnected", body.Phase)
	assert.Contains(t, body.Entities, "devices")
	assert.Zero(t, body.Entities["devices"])
}

func TestMetricsEndpointServes(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
