// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package unifi holds the plumbing both API surfaces share: platform
// classification, base-URL rules, and the consumer-visible error taxonomy.
package unifi

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform classifies the controller deployment. It decides URL prefixes
// and which features (push stream, legacy endpoints) exist at all.
type Platform int

const (
	PlatformUnknown Platform = iota
	// PlatformUniFiOS is a console running the bundled network application
	// behind the /proxy/network gateway.
	PlatformUniFiOS
	// PlatformStandalone is a self-hosted network application.
	PlatformStandalone
	// PlatformCloud is the hosted API; no session surface, no push stream.
	PlatformCloud
)

func (p Platform) String() string {
	switch p {
	case PlatformUniFiOS:
		return "unifi-os"
	case PlatformStandalone:
		return "standalone"
	case PlatformCloud:
		return "cloud"
	default:
		return "unknown"
	}
}

// IntegrationPrefix is the path prefix in front of the integration API.
func (p Platform) IntegrationPrefix() string {
	if p == PlatformUniFiOS {
		return "/proxy/network/integration"
	}
	return "/integration"
}

// LegacyPrefix is the path prefix in front of the session API.
func (p Platform) LegacyPrefix() string {
	if p == PlatformUniFiOS {
		return "/proxy/network"
	}
	return ""
}

// LoginPath is the session login endpoint for the platform.
func (p Platform) LoginPath() string {
	if p == PlatformUniFiOS {
		return "/api/auth/login"
	}
	return "/api/login"
}

// LogoutPath is the session logout endpoint for the platform.
func (p Platform) LogoutPath() string {
	if p == PlatformUniFiOS {
		return "/api/auth/logout"
	}
	return "/api/logout"
}

// EventStreamPath returns the websocket path for the given site slug. The
// second return is false when the platform has no push stream.
func (p Platform) EventStreamPath(site string) (string, bool) {
	switch p {
	case PlatformUniFiOS:
		return "/proxy/network/wss/s/" + url.PathEscape(site) + "/events", true
	case PlatformStandalone:
		return "/wss/s/" + url.PathEscape(site) + "/events", true
	default:
		return "", false
	}
}

// IntegrationBaseURL normalizes raw into the integration API base, always
// ending in "/". A raw URL that already ends in /integration is preserved
// as-is so callers can point at non-standard proxies.
func IntegrationBaseURL(raw string, p Platform) (string, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q missing scheme or host", raw)
	}
	if strings.HasSuffix(u.Path, "/integration") {
		return u.String() + "/", nil
	}
	u.Path = strings.TrimRight(u.Path, "/") + p.IntegrationPrefix()
	return u.String() + "/", nil
}
