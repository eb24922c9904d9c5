// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/httpx"
	"github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/store"
	"github.com/ManuGH/unictl/internal/stream"
	"github.com/ManuGH/unictl/internal/unifi"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
	"github.com/ManuGH/unictl/internal/unifi/rest"
	"github.com/ManuGH/unictl/internal/unifi/wsev"
)

const commandQueueCapacity = 64

type commandResult struct {
	out any
	err error
}

type commandEnvelope struct {
	cmd   Command
	reply chan commandResult
}

// Controller is the runtime core. It owns the API clients, the store and
// every background task; consumers interact only through its accessors.
//
// The cancellation tree has two levels: a controller-lifetime parent and a
// connection-lifetime child. Disconnect cancels only the child, so a later
// Connect starts clean without tearing the controller down.
type Controller struct {
	cfg    Config
	logger zerolog.Logger

	parentCtx    context.Context
	parentCancel context.CancelFunc

	// mu guards the client handles and connection-scoped fields. Callers
	// clone under the lock and release it before any network I/O.
	mu            sync.Mutex
	restc         *rest.Client
	legacyc       *legacy.Client
	legacySession bool
	wsc           *wsev.Client
	siteID        string // resolved integration-API site UUID
	siteSlug      string // legacy-path slug
	platform      unifi.Platform
	childCancel   context.CancelFunc
	commands      chan commandEnvelope

	tasks sync.WaitGroup

	store     *store.Store
	connState *stream.Watch[domain.ConnectionState]
	statsQ    *stream.Queue[domain.StatsUpdate]

	warnMu   sync.Mutex
	warnings []string

	seenMu     sync.Mutex
	seenEvents map[string]struct{}
}

// New builds a controller for cfg. No I/O happens until Connect.
func New(cfg Config) (*Controller, error) {
	cfg = cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parent, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:          cfg,
		logger:       log.WithComponent("controller"),
		parentCtx:    parent,
		parentCancel: cancel,
		commands:     make(chan commandEnvelope, commandQueueCapacity),
		store:        store.New(),
		connState:    stream.NewWatchValue(domain.ConnectionState{Phase: domain.PhaseDisconnected}),
		statsQ:       stream.NewQueue[domain.StatsUpdate](),
		seenEvents:   make(map[string]struct{}),
	}, nil
}

// Close cancels the controller-lifetime context. The controller is unusable
// afterwards.
func (c *Controller) Close() {
	c.parentCancel()
	c.statsQ.Close()
	c.store.CloseEvents()
}

// Connect establishes sessions, resolves the site, performs one synchronous
// full refresh and spawns the background tasks.
func (c *Controller) Connect(ctx context.Context) error {
	c.setState(domain.ConnectionState{Phase: domain.PhaseConnecting})
	if err := c.connect(ctx); err != nil {
		c.setState(domain.ConnectionState{Phase: domain.PhaseFailed, Reason: err.Error()})
		return err
	}
	c.setState(domain.ConnectionState{Phase: domain.PhaseConnected})
	return nil
}

func (c *Controller) connect(ctx context.Context) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return &unifi.TransportError{Err: err}
	}
	sessionHTTP, err := httpx.New(httpx.Options{
		Mode:    c.cfg.TLSMode,
		CAPath:  c.cfg.CAPath,
		Timeout: c.cfg.Timeout,
		Jar:     jar,
	})
	if err != nil {
		return err
	}

	// Platform detection runs over the session surface; the hosted API has
	// no such surface and is cloud by definition.
	platform := unifi.PlatformCloud
	var legacyc *legacy.Client
	if c.cfg.Auth != AuthCloud {
		legacyc = legacy.New(c.cfg.URL, c.cfg.Site, sessionHTTP)
		platform, err = legacyc.Detect(ctx)
		if err != nil {
			if c.cfg.Auth == AuthCredentials {
				return err
			}
			// The integration API may still answer; degrade.
			c.warn(fmt.Sprintf("platform detection failed: %v", err))
			platform = unifi.PlatformStandalone
			legacyc = nil
		}
	}

	var restc *rest.Client
	if c.cfg.Auth != AuthCredentials {
		base, err := unifi.IntegrationBaseURL(c.cfg.URL, platform)
		if err != nil {
			return &unifi.ValidationError{Message: err.Error()}
		}
		restHTTP, err := httpx.New(httpx.Options{
			Mode:           c.cfg.TLSMode,
			CAPath:         c.cfg.CAPath,
			Timeout:        c.cfg.Timeout,
			DefaultHeaders: map[string]string{rest.HeaderAPIKey: c.cfg.APIKey},
		})
		if err != nil {
			return err
		}
		restc = rest.New(base, restHTTP)
	}

	legacySession := false
	switch c.cfg.Auth {
	case AuthCredentials:
		if err := legacyc.Login(ctx, c.cfg.Username, c.cfg.Password); err != nil {
			return err
		}
		legacySession = true
	case AuthAPIKey, AuthHybrid:
		switch {
		case legacyc == nil:
		case c.cfg.Username == "" || c.cfg.Password == "":
			c.warn("no session credentials configured: push stream, events and health are unavailable")
			legacyc = nil
		default:
			if err := legacyc.Login(ctx, c.cfg.Username, c.cfg.Password); err != nil {
				c.warn(fmt.Sprintf("session login failed: %v (continuing with the integration API only)", err))
				legacyc = nil
			} else {
				legacySession = true
			}
		}
	case AuthCloud:
		c.warn("cloud API: push stream and session-only features are unavailable")
	}

	siteID, siteSlug, err := c.resolveSite(ctx, restc)
	if err != nil {
		return err
	}
	if legacyc != nil && siteSlug != c.cfg.Site {
		legacyc = legacyc.WithSite(siteSlug)
	}

	childCtx, childCancel := context.WithCancel(c.parentCtx)

	c.mu.Lock()
	c.restc = restc
	c.legacyc = legacyc
	c.legacySession = legacySession
	c.siteID = siteID
	c.siteSlug = siteSlug
	c.platform = platform
	c.childCancel = childCancel
	c.mu.Unlock()

	if err := c.fullRefresh(ctx); err != nil {
		childCancel()
		return err
	}

	c.startEventStream(childCtx)
	c.startTasks(childCtx)

	c.logger.Info().
		Str(log.FieldPlatform, platform.String()).
		Str(log.FieldSite, siteSlug).
		Str(log.FieldSiteID, siteID).
		Msg("connected")
	return nil
}

// resolveSite maps the configured site onto the integration-API UUID and the
// legacy slug. A configured UUID short-circuits the list call unless a slug
// is still needed for legacy paths.
func (c *Controller) resolveSite(ctx context.Context, restc *rest.Client) (siteID, siteSlug string, err error) {
	configured := strings.TrimSpace(c.cfg.Site)
	if _, perr := uuid.Parse(configured); perr == nil {
		siteID = configured
		siteSlug = configured
		if restc != nil {
			// Best effort: recover the slug so legacy paths work too.
			sites, lerr := rest.PaginateAll(ctx, 25, func(ctx context.Context, offset int64, limit int32) (rest.Page[rest.Site], error) {
				return restc.ListSites(ctx, offset, limit)
			})
			if lerr == nil {
				for _, s := range sites {
					if s.ID == configured {
						siteSlug = s.InternalReference
						break
					}
				}
			}
		}
		return siteID, siteSlug, nil
	}

	if restc == nil {
		// Session-only configs address the site by slug throughout.
		return "", configured, nil
	}

	sites, err := rest.PaginateAll(ctx, 25, func(ctx context.Context, offset int64, limit int32) (rest.Page[rest.Site], error) {
		return restc.ListSites(ctx, offset, limit)
	})
	if err != nil {
		return "", "", err
	}
	for _, s := range sites {
		if s.InternalReference == configured {
			return s.ID, s.InternalReference, nil
		}
	}
	return "", "", &unifi.SiteNotFoundError{Name: configured}
}

// startEventStream builds and starts the push-stream client when the
// configuration and platform allow one.
func (c *Controller) startEventStream(ctx context.Context) {
	if !c.cfg.WebsocketEnabled {
		return
	}
	c.mu.Lock()
	legacyc := c.legacyc
	session := c.legacySession
	platform := c.platform
	slug := c.siteSlug
	c.mu.Unlock()

	if legacyc == nil || !session {
		c.warn("push stream disabled: no session")
		return
	}
	path, ok := platform.EventStreamPath(slug)
	if !ok {
		c.warn("push stream unavailable on this platform")
		return
	}
	wsURL, err := websocketURL(c.cfg.URL, path)
	if err != nil {
		c.warn(fmt.Sprintf("push stream disabled: %v", err))
		return
	}
	tlsCfg, err := httpx.TLSClientConfig(c.cfg.TLSMode, c.cfg.CAPath)
	if err != nil {
		c.warn(fmt.Sprintf("push stream disabled: %v", err))
		return
	}

	wsc := wsev.New(wsev.Config{
		URL:          wsURL,
		CookieHeader: legacyc.SessionCookie(),
		TLS:          tlsCfg,
		Reconnect:    wsev.DefaultReconnect(),
	})
	wsc.Start(ctx)

	c.mu.Lock()
	c.wsc = wsc
	c.mu.Unlock()

	c.goTask(ctx, "event-bridge", c.eventBridge(wsc))
	c.goTask(ctx, "stream-state", func(ctx context.Context) {
		sub := wsc.SubscribeState()
		defer sub.Close()
		for {
			st, err := sub.Next(ctx)
			if err != nil {
				return
			}
			c.applyStreamState(st)
		}
	})
}

// applyStreamState folds push-stream drops into the connection lifecycle.
// A dropped stream demotes Connected to Reconnecting with the attempt count;
// a successful handshake restores Connected. The REST surface stays usable
// throughout, so commands keep flowing while the stream recovers.
func (c *Controller) applyStreamState(st wsev.StreamState) {
	cur := c.ConnectionState()
	switch {
	case st.Connected:
		if cur.Phase == domain.PhaseReconnecting {
			c.setState(domain.ConnectionState{Phase: domain.PhaseConnected})
		}
	case st.Attempt > 0:
		if cur.Phase == domain.PhaseConnected || cur.Phase == domain.PhaseReconnecting {
			c.setState(domain.ConnectionState{Phase: domain.PhaseReconnecting, Attempt: st.Attempt})
		}
	}
}

func websocketURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = path
	return u.String(), nil
}

// Disconnect cancels the connection-lifetime context, waits for every
// background task, logs the session out best-effort and resets the command
// channel for the next connect.
func (c *Controller) Disconnect(ctx context.Context) {
	c.mu.Lock()
	childCancel := c.childCancel
	wsc := c.wsc
	legacyc := c.legacyc
	session := c.legacySession
	c.childCancel = nil
	c.wsc = nil
	c.mu.Unlock()

	if childCancel != nil {
		childCancel()
	}
	c.tasks.Wait()
	if wsc != nil {
		wsc.Shutdown()
	}
	if legacyc != nil && session {
		logoutCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		legacyc.Logout(logoutCtx)
		cancel()
	}

	c.mu.Lock()
	c.restc = nil
	c.legacyc = nil
	c.legacySession = false
	c.commands = make(chan commandEnvelope, commandQueueCapacity)
	c.mu.Unlock()

	c.setState(domain.ConnectionState{Phase: domain.PhaseDisconnected})
	c.logger.Info().Msg("disconnected")
}

// Oneshot connects without pollers or the push stream, invokes fn and
// disconnects. Intended for single-request CLI flows.
func Oneshot(ctx context.Context, cfg Config, fn func(*Controller) error) error {
	cfg.WebsocketEnabled = false
	cfg.RefreshInterval = 0
	cfg.BandwidthPollInterval = -1

	c, err := New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Disconnect(ctx)
	return fn(c)
}

// Execute routes one command. Only valid while connected; a reconnecting
// push stream does not block commands because the REST surface is still
// live. The envelope travels through a bounded queue with a single consumer.
func (c *Controller) Execute(ctx context.Context, cmd Command) (any, error) {
	if p := c.ConnectionState().Phase; p != domain.PhaseConnected && p != domain.PhaseReconnecting {
		return nil, unifi.ErrControllerDisconnected
	}
	c.mu.Lock()
	commands := c.commands
	c.mu.Unlock()

	env := commandEnvelope{cmd: cmd, reply: make(chan commandResult, 1)}
	select {
	case commands <- env:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-env.reply:
		return res.out, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ConnectionState returns the current lifecycle phase.
func (c *Controller) ConnectionState() domain.ConnectionState {
	s, _ := c.connState.Get()
	return s
}

// SubscribeConnectionState returns a watch subscriber over lifecycle phases.
func (c *Controller) SubscribeConnectionState() *stream.WatchSub[domain.ConnectionState] {
	return c.connState.Subscribe()
}

// Connected reports whether the runtime currently holds a live connection.
func (c *Controller) Connected() bool {
	return c.ConnectionState().Phase == domain.PhaseConnected
}

// TakeWarnings drains the accumulated user-visible warnings.
func (c *Controller) TakeWarnings() []string {
	c.warnMu.Lock()
	defer c.warnMu.Unlock()
	out := c.warnings
	c.warnings = nil
	return out
}

func (c *Controller) warn(msg string) {
	c.logger.Warn().Msg(msg)
	c.warnMu.Lock()
	c.warnings = append(c.warnings, msg)
	c.warnMu.Unlock()
}

func (c *Controller) setState(s domain.ConnectionState) {
	old := c.ConnectionState()
	c.connState.Set(s)
	if old.Phase != s.Phase {
		c.logger.Debug().
			Str(log.FieldOldState, old.Phase.String()).
			Str(log.FieldNewState, s.Phase.String()).
			Msg("connection state changed")
	}
}

// clients returns clones of the connection-scoped handles. The lock is held
// only for the copy, never across I/O.
func (c *Controller) clients() (restc *rest.Client, legacyc *legacy.Client, siteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	restc = c.restc
	if c.legacyc != nil && c.legacySession {
		legacyc = c.legacyc.Clone()
	}
	return restc, legacyc, c.siteID
}

func (c *Controller) goTask(ctx context.Context, name string, fn func(context.Context)) {
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		fn(ctx)
		c.logger.Debug().Str(log.FieldTask, name).Msg("task stopped")
	}()
}
