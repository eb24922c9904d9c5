// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package controller is the runtime core: it owns the API clients, the data
// store and every background task, and re-exports snapshots, change streams
// and command dispatch to consumers.
package controller

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ManuGH/unictl/internal/httpx"
)

// AuthMode selects which API surfaces the runtime authenticates against.
type AuthMode int

const (
	// AuthAPIKey uses the integration API; the session API is attempted as
	// a best-effort supplement.
	AuthAPIKey AuthMode = iota
	// AuthCredentials uses only the session API.
	AuthCredentials
	// AuthHybrid requires the integration API and logs into the session API.
	AuthHybrid
	// AuthCloud uses the hosted integration API; no session surface exists.
	AuthCloud
)

func (m AuthMode) String() string {
	switch m {
	case AuthCredentials:
		return "credentials"
	case AuthHybrid:
		return "hybrid"
	case AuthCloud:
		return "cloud"
	default:
		return "api-key"
	}
}

// Config parameterizes one controller connection.
type Config struct {
	URL  string // controller base URL
	Site string // site slug or UUID

	Auth     AuthMode
	APIKey   string
	Username string
	Password string

	TLSMode httpx.TLSMode
	CAPath  string
	Timeout time.Duration

	// RefreshInterval is the periodic full-refresh cadence; 0 disables it.
	RefreshInterval time.Duration
	// BandwidthPollInterval is the health-poll cadence. Zero takes the 2s
	// default; a negative value disables the poll.
	BandwidthPollInterval time.Duration
	// WebsocketEnabled toggles the push stream.
	WebsocketEnabled bool
}

const defaultBandwidthPollInterval = 2 * time.Second

// Defaults fills unset cadences with the runtime's standard values.
func (c Config) Defaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.BandwidthPollInterval == 0 {
		c.BandwidthPollInterval = defaultBandwidthPollInterval
	}
	return c
}

// Validate rejects configurations that cannot possibly connect.
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("config: url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: url %q is not an absolute URL", c.URL)
	}
	if strings.TrimSpace(c.Site) == "" {
		return fmt.Errorf("config: site is required")
	}
	switch c.Auth {
	case AuthAPIKey, AuthCloud:
		if c.APIKey == "" {
			return fmt.Errorf("config: auth mode %s requires an api key", c.Auth)
		}
	case AuthCredentials:
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("config: auth mode credentials requires username and password")
		}
	case AuthHybrid:
		if c.APIKey == "" {
			return fmt.Errorf("config: auth mode hybrid requires an api key")
		}
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("config: auth mode hybrid requires username and password")
		}
	default:
		return fmt.Errorf("config: unknown auth mode %d", c.Auth)
	}
	if c.TLSMode == httpx.TLSCustomCA && c.CAPath == "" {
		return fmt.Errorf("config: custom CA mode requires a bundle path")
	}
	return nil
}
