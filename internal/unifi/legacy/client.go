// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package legacy is the cookie-session client for the classic controller
// API (/api/s/{site}/...). It covers the endpoints the integration API does
// not: events, alarms, health, reports, and the cmd/* managers.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/metrics"
	"github.com/ManuGH/unictl/internal/unifi"
)

const csrfHeader = "X-Csrf-Token"

// Controllers fall over under unthrottled poller bursts; pace every clone
// through one shared limiter.
const (
	requestsPerSecond = 10
	requestBurst      = 5
)

// Client is a session-authenticated legacy API client. Clone before
// releasing any outer lock: clones share the cookie jar, transport, CSRF
// state, and pacing limiter, so concurrent pollers stay cheap.
type Client struct {
	base     string // scheme://host[:port], no trailing slash
	site     string // site slug for /api/s/{site} paths
	platform unifi.Platform
	http     *http.Client
	limiter  *rate.Limiter
	csrf     *csrfState
	logger   zerolog.Logger
}

// csrfState is shared across clones; UniFiOS rotates the token on login and
// concurrent pollers read it, so access is guarded.
type csrfState struct {
	mu    sync.Mutex
	token string
}

func (s *csrfState) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *csrfState) set(tok string) {
	if tok == "" {
		return
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// New builds a client for the given controller base URL and site slug. The
// HTTP client must carry a cookie jar; the session lives there.
func New(base, site string, httpClient *http.Client) *Client {
	return &Client{
		base:    strings.TrimRight(base, "/"),
		site:    site,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		csrf:    &csrfState{},
		logger:  log.WithComponent("legacy"),
	}
}

// Clone returns a cheap handle sharing the session, transport and pacing.
func (c *Client) Clone() *Client {
	clone := *c
	return &clone
}

// WithSite returns a clone addressing a different site slug.
func (c *Client) WithSite(site string) *Client {
	clone := c.Clone()
	clone.site = site
	return clone
}

// Platform returns the detected platform, or PlatformUnknown before Detect.
func (c *Client) Platform() unifi.Platform {
	return c.platform
}

// Site returns the configured site slug.
func (c *Client) Site() string {
	return c.site
}

// Detect classifies the controller by probing the base URL without
// following redirects. Self-hosted controllers redirect / to /manage;
// a UniFi OS console answers 200 (and advertises a CSRF token).
func (c *Client) Detect(ctx context.Context) (unifi.Platform, error) {
	probe := &http.Client{
		Transport: c.http.Transport,
		Jar:       c.http.Jar,
		Timeout:   c.http.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return unifi.PlatformUnknown, &unifi.ValidationError{Message: fmt.Sprintf("build probe request: %v", err)}
	}
	res, err := probe.Do(req)
	if err != nil {
		return unifi.PlatformUnknown, &unifi.TransportError{Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))

	c.csrf.set(res.Header.Get(csrfHeader))

	switch {
	case res.StatusCode >= 300 && res.StatusCode < 400:
		loc := res.Header.Get("Location")
		if strings.Contains(loc, "/manage") || strings.Contains(loc, "/login") {
			c.platform = unifi.PlatformStandalone
		} else {
			c.platform = unifi.PlatformUniFiOS
		}
	default:
		c.platform = unifi.PlatformUniFiOS
	}

	c.logger.Debug().
		Str(log.FieldPlatform, c.platform.String()).
		Int(log.FieldStatus, res.StatusCode).
		Msg("platform detected")
	return c.platform, nil
}

// Login establishes the session. The cookie jar captures the session
// cookies; UniFi OS additionally rotates the CSRF token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if c.platform == unifi.PlatformUnknown {
		if _, err := c.Detect(ctx); err != nil {
			return err
		}
	}
	body, err := json.Marshal(map[string]any{
		"username": username,
		"password": password,
		"remember": true,
	})
	if err != nil {
		return &unifi.AuthError{Message: fmt.Sprintf("encode credentials: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+c.platform.LoginPath(), bytes.NewReader(body))
	if err != nil {
		return &unifi.AuthError{Message: fmt.Sprintf("build login request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.csrf.get(); tok != "" {
		req.Header.Set(csrfHeader, tok)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &unifi.TransportError{Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))

	c.csrf.set(res.Header.Get(csrfHeader))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &unifi.AuthError{Message: fmt.Sprintf("login returned %s", res.Status)}
	}
	c.logger.Info().Str(log.FieldPlatform, c.platform.String()).Msg("session established")
	return nil
}

// Logout ends the session. Failures are logged and swallowed; a dying
// session expires on its own.
func (c *Client) Logout(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+c.platform.LogoutPath(), nil)
	if err != nil {
		return
	}
	if tok := c.csrf.get(); tok != "" {
		req.Header.Set(csrfHeader, tok)
	}
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("logout failed")
		return
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))
}

// SessionCookie renders the current session cookies as a Cookie header
// value for the websocket handshake. Empty before login.
func (c *Client) SessionCookie() string {
	if c.http.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.base)
	if err != nil {
		return ""
	}
	cookies := c.http.Jar.Cookies(u)
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

// envelope is the {"meta":{"rc":...},"data":[...]} wrapper every legacy
// response uses.
type envelope struct {
	Meta struct {
		RC      string `json:"rc"`
		Message string `json:"msg"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// sitePath builds /api/s/{site}/{p} with the platform prefix.
func (c *Client) sitePath(p string) string {
	return c.base + c.platform.LegacyPrefix() + "/api/s/" + url.PathEscape(c.site) + "/" + p
}

// apiPath builds /api/{p} with the platform prefix, for non-site endpoints.
func (c *Client) apiPath(p string) string {
	return c.base + c.platform.LegacyPrefix() + "/api/" + p
}

// do performs one enveloped request and decodes data into out (which may be
// nil). body nil means GET unless method overrides.
func (c *Client) do(ctx context.Context, method, fullURL string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &unifi.TransportError{Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &unifi.ValidationError{Message: fmt.Sprintf("encode request body: %v", err)}
		}
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return &unifi.ValidationError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.csrf.get(); tok != "" {
		req.Header.Set(csrfHeader, tok)
	}

	op := req.URL.Path
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest("legacy", op, 0, time.Since(start).Seconds())
		return &unifi.TransportError{Err: err}
	}
	defer res.Body.Close()
	metrics.ObserveAPIRequest("legacy", op, res.StatusCode, time.Since(start).Seconds())

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return &unifi.TransportError{Err: err}
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return &unifi.AuthError{Message: "session rejected, login required"}
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return &unifi.IntegrationError{Status: res.StatusCode, Message: strings.TrimSpace(firstBytes(raw, 200))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &unifi.DeserializationError{Message: err.Error(), BodyPreview: firstBytes(raw, 200)}
	}
	if env.Meta.RC != "" && env.Meta.RC != "ok" {
		return &unifi.IntegrationError{Status: res.StatusCode, Message: env.Meta.Message, Code: env.Meta.RC}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &unifi.DeserializationError{Message: err.Error(), BodyPreview: firstBytes(env.Data, 200)}
	}
	return nil
}

func firstBytes(raw []byte, n int) string {
	if len(raw) > n {
		raw = raw[:n]
	}
	return string(raw)
}
