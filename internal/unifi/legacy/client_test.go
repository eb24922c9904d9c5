// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package legacy

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/unictl/internal/unifi"
)

func newJarClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func TestDetectStandaloneViaRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/manage", http.StatusFound)
			return
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "default", newJarClient(t))
	p, err := c.Detect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, unifi.PlatformStandalone, p)
	assert.Equal(t, unifi.PlatformStandalone, c.Platform())
}

func TestDetectUniFiOSAndCapturesCSRF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Csrf-Token", "tok-1")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "default", newJarClient(t))
	p, err := c.Detect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, unifi.PlatformUniFiOS, p)
	assert.Equal(t, "tok-1", c.csrf.token)
}

func TestLoginUsesPlatformPathAndStoresCookie(t *testing.T) {
	var loginPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/manage", http.StatusFound)
		case "/api/login":
			loginPath = r.URL.Path
			var creds map[string]any
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds["username"] != "admin" || creds["password"] != "pw" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "unifises", Value: "sess-1"})
			_, _ = w.Write([]byte(`{"meta":{"rc":"ok"},"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "default", newJarClient(t))
	require.NoError(t, c.Login(t.Context(), "admin", "pw"))
	assert.Equal(t, "/api/login", loginPath)
	assert.Contains(t, c.SessionCookie(), "unifises=sess-1")
}

func TestLoginFailureIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/manage", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "default", newJarClient(t))
	err := c.Login(t.Context(), "admin", "wrong")
	var ae *unifi.AuthError
	assert.ErrorAs(t, err, &ae)
}

func TestEnvelopeDecodingAndSitePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/manage", http.StatusFound)
			return
		}
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"meta":{"rc":"ok"},"data":[{"mac":"aa:bb:cc:00:11:22","is_wired":true}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "home", newJarClient(t))
	_, err := c.Detect(t.Context())
	require.NoError(t, err)

	stas, err := c.ListClients(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "/api/s/home/stat/sta", gotPath)
	require.Len(t, stas, 1)
	assert.Equal(t, "aa:bb:cc:00:11:22", stas[0].Mac)
	assert.True(t, stas[0].IsWired)
}

func TestEnvelopeErrorRC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/manage", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`{"meta":{"rc":"error","msg":"api.err.NoSiteContext"},"data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "nope", newJarClient(t))
	_, err := c.Detect(t.Context())
	require.NoError(t, err)

	_, err = c.ListDevices(t.Context())
	var ie *unifi.IntegrationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "api.err.NoSiteContext", ie.Message)
	assert.Equal(t, "error", ie.Code)
}

func TestSessionExpiryIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/manage", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "default", newJarClient(t))
	_, err := c.Detect(t.Context())
	require.NoError(t, err)

	_, err = c.Health(t.Context())
	var ae *unifi.AuthError
	assert.ErrorAs(t, err, &ae)
}

func TestCloneSharesSessionState(t *testing.T) {
	c := New("https://ctl.example", "default", newJarClient(t))
	c.csrf.token = "tok"

	clone := c.Clone()
	assert.Same(t, c.http, clone.http)
	assert.Same(t, c.limiter, clone.limiter)
	assert.Same(t, c.csrf, clone.csrf)
	assert.Equal(t, "tok", clone.csrf.token)
}

func TestUniFiOSPathsCarryProxyPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"meta":{"rc":"ok"},"data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "default", newJarClient(t))
	_, err := c.Detect(t.Context())
	require.NoError(t, err)

	_, err = c.ListEvents(t.Context(), 50)
	require.NoError(t, err)
	assert.Equal(t, "/proxy/network/api/s/default/stat/event", gotPath)
}
