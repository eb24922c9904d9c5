// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package wsev maintains the persistent push connection to the controller
// and fans messages out to subscribers. Slow subscribers lag; they never
// stall the reader.
package wsev

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/metrics"
	"github.com/ManuGH/unictl/internal/stream"
)

const (
	broadcastCapacity = 256
	readLimit         = 8 << 20
	readIdleTimeout   = 90 * time.Second
)

// ReconnectConfig bounds the reconnect loop. MaxAttempts 0 means retry
// forever; the delay resets to InitialDelay after a successful handshake.
type ReconnectConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}

// DefaultReconnect is the runtime's standard reconnect policy.
func DefaultReconnect() ReconnectConfig {
	return ReconnectConfig{
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2,
	}
}

// StreamState is the connection state of the push stream: either connected,
// or between attempts with the count of drops since the last good handshake.
type StreamState struct {
	Connected bool
	Attempt   int
}

// Message is one normalized push-stream frame entry.
type Message struct {
	Key       string
	Subsystem string
	Datetime  string
	Message   string
	SiteID    string
	Extra     map[string]any
}

// Config parameterizes the stream client.
type Config struct {
	URL              string // full ws(s) URL with the site substituted
	CookieHeader     string // legacy session cookies; required
	TLS              *tls.Config
	Reconnect        ReconnectConfig
	HandshakeTimeout time.Duration
}

// Client owns the connection and the fan-out. Start once; Shutdown once.
type Client struct {
	cfg    Config
	bc     *stream.Broadcast[Message]
	state  *stream.Watch[StreamState]
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

// New builds a stream client; the connection is not opened until Start.
func New(cfg Config) *Client {
	if cfg.Reconnect.InitialDelay <= 0 {
		cfg.Reconnect = DefaultReconnect()
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		bc:     stream.NewBroadcast[Message](broadcastCapacity),
		state:  stream.NewWatch[StreamState](),
		done:   make(chan struct{}),
		logger: log.WithComponent("wsev"),
	}
}

// Subscribe returns a new broadcast subscriber.
func (c *Client) Subscribe() *stream.BroadcastSub[Message] {
	return c.bc.Subscribe()
}

// SubscribeState returns a last-value-wins watch over the stream's
// connection state.
func (c *Client) SubscribeState() *stream.WatchSub[StreamState] {
	return c.state.Subscribe()
}

// Start launches the connect/read/reconnect loop bound to ctx.
func (c *Client) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(runCtx)
}

// Shutdown closes the connection, stops the reconnect loop and closes the
// broadcast. Safe to call more than once.
func (c *Client) Shutdown() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
			<-c.done
		}
		c.bc.Close()
	})
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.Reconnect.InitialDelay
	bo.MaxInterval = c.cfg.Reconnect.MaxDelay
	if c.cfg.Reconnect.Multiplier > 0 {
		bo.Multiplier = c.cfg.Reconnect.Multiplier
	}
	bo.Reset()

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		connected, err := c.connectAndRead(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			attempt = 0
			bo.Reset()
		}

		attempt++
		metrics.ObserveStreamReconnect()
		c.state.Set(StreamState{Attempt: attempt})
		if c.cfg.Reconnect.MaxAttempts > 0 && attempt >= c.cfg.Reconnect.MaxAttempts {
			c.logger.Warn().
				Int(log.FieldAttempt, attempt).
				Err(err).
				Msg("push stream gave up after max reconnect attempts")
			return
		}

		delay := bo.NextBackOff()
		c.logger.Debug().
			Int(log.FieldAttempt, attempt).
			Dur("delay", delay).
			Err(err).
			Msg("push stream reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// connectAndRead performs one handshake and reads until the connection
// drops or ctx is cancelled. connected reports whether the handshake
// succeeded; run resets the backoff and attempt count on it.
func (c *Client) connectAndRead(ctx context.Context) (connected bool, _ error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		TLSClientConfig:  c.cfg.TLS,
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}
	header := http.Header{}
	if c.cfg.CookieHeader != "" {
		header.Set("Cookie", c.cfg.CookieHeader)
	}

	conn, res, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if res != nil {
			res.Body.Close()
		}
		return false, err
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)
	c.state.Set(StreamState{Connected: true})

	// Unblock the blocking reader when the context dies.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	c.logger.Info().Str(log.FieldBaseURL, c.cfg.URL).Msg("push stream connected")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		for _, msg := range parseFrame(payload) {
			metrics.ObserveStreamMessage(classify(msg.Key))
			c.bc.Send(msg)
		}
	}
}

// frame is the raw {"meta":...,"data":[...]} websocket payload.
type frame struct {
	Meta struct {
		RC      string `json:"rc"`
		Message string `json:"message"`
	} `json:"meta"`
	Data []map[string]any `json:"data"`
}

// parseFrame normalizes one payload into zero or more messages. Unparseable
// payloads are dropped; the stream carries occasional non-JSON keepalives.
func parseFrame(payload []byte) []Message {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil
	}
	if len(f.Data) == 0 {
		if f.Meta.Message == "" {
			return nil
		}
		return []Message{{Key: f.Meta.Message}}
	}
	out := make([]Message, 0, len(f.Data))
	for _, entry := range f.Data {
		m := Message{
			Key:   f.Meta.Message,
			Extra: entry,
		}
		if k, ok := entry["key"].(string); ok && k != "" {
			m.Key = k
		}
		if v, ok := entry["subsystem"].(string); ok {
			m.Subsystem = v
		}
		if v, ok := entry["datetime"].(string); ok {
			m.Datetime = v
		}
		if v, ok := entry["msg"].(string); ok {
			m.Message = v
		}
		if v, ok := entry["site_id"].(string); ok {
			m.SiteID = v
		}
		out = append(out, m)
	}
	return out
}

func classify(key string) string {
	switch {
	case strings.HasSuffix(key, ":sync"):
		return "sync"
	case strings.HasSuffix(key, ":update"):
		return "update"
	default:
		return "event"
	}
}

// ErrStreamUnavailable is returned when the controller exposes no push
// stream endpoint for the configured platform.
var ErrStreamUnavailable = errors.New("wsev: push stream not available on this platform")
