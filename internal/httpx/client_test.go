// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package httpx

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptAllInvalidTalksToSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cl, err := New(Options{Mode: TLSAcceptAllInvalid, Timeout: 5 * time.Second})
	require.NoError(t, err)

	res, err := cl.Get(srv.URL)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestSystemRootsRejectsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	cl, err := New(Options{Mode: TLSSystemRoots, Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = cl.Get(srv.URL) //nolint:bodyclose
	assert.Error(t, err)
}

func TestCustomCAErrors(t *testing.T) {
	_, err := New(Options{Mode: TLSCustomCA})
	assert.ErrorIs(t, err, ErrInvalidTLSConfig)

	_, err = New(Options{Mode: TLSCustomCA, CAPath: "/does/not/exist.pem"})
	assert.ErrorIs(t, err, ErrInvalidTLSConfig)

	garbage := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pem"), 0o600))
	_, err = New(Options{Mode: TLSCustomCA, CAPath: garbage})
	assert.ErrorIs(t, err, ErrInvalidTLSConfig)
}

func TestDefaultHeadersInjected(t *testing.T) {
	var gotKey, gotOverride string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotOverride = r.Header.Get("Accept")
	}))
	defer srv.Close()

	cl, err := New(Options{
		Timeout:        5 * time.Second,
		DefaultHeaders: map[string]string{"X-Api-Key": "secret", "Accept": "application/json"},
	})
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("Accept", "text/plain") // per-request value wins
	res, err := cl.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "text/plain", gotOverride)
}

func TestInvalidHeaderRejected(t *testing.T) {
	_, err := New(Options{DefaultHeaders: map[string]string{"Bad\nName": "v"}})
	assert.ErrorIs(t, err, ErrInvalidHeaderValue)

	_, err = New(Options{DefaultHeaders: map[string]string{"X-Ok": "bad\r\nvalue"}})
	assert.ErrorIs(t, err, ErrInvalidHeaderValue)
}

func TestJarIsAttached(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	cl, err := New(Options{Jar: jar})
	require.NoError(t, err)
	assert.Same(t, jar, cl.Jar)
}
