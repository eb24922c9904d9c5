// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command unictl runs the controller runtime as a daemon: it mirrors one
// site, keeps the mirror fresh over the push stream and pollers, and exposes
// the ops endpoints. With -oneshot it connects once, prints a site summary
// and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/unictl/internal/controller"
	"github.com/ManuGH/unictl/internal/httpx"
	uclog "github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/ops"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

// maskURL strips user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	u.User = nil
	return u.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	controllerURL := flag.String("url", envOr("UNICTL_URL", ""), "controller base URL")
	site := flag.String("site", envOr("UNICTL_SITE", "default"), "site slug or UUID")
	authMode := flag.String("auth", envOr("UNICTL_AUTH", "api-key"), "auth mode: api-key, credentials, hybrid, cloud")
	apiKey := flag.String("api-key", envOr("UNICTL_API_KEY", ""), "integration API key")
	username := flag.String("username", envOr("UNICTL_USERNAME", ""), "session username")
	password := flag.String("password", envOr("UNICTL_PASSWORD", ""), "session password")
	insecure := flag.Bool("insecure", false, "accept invalid TLS certificates")
	caPath := flag.String("ca", envOr("UNICTL_CA", ""), "path to a PEM CA bundle")
	timeout := flag.Duration("timeout", 15*time.Second, "per-request timeout")
	refreshInterval := flag.Duration("refresh-interval", 15*time.Minute, "full refresh cadence, 0 disables")
	healthInterval := flag.Duration("health-interval", 2*time.Second, "health poll cadence, negative disables")
	noWebsocket := flag.Bool("no-websocket", false, "disable the push stream")
	opsAddr := flag.String("ops-addr", envOr("UNICTL_OPS_ADDR", ":9090"), "ops listener address")
	oneshot := flag.Bool("oneshot", false, "connect once, print a site summary and exit")
	logLevel := flag.String("log-level", envOr("UNICTL_LOG_LEVEL", "info"), "log level")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	uclog.Configure(uclog.Config{
		Level:   *logLevel,
		Service: "unictl",
		Version: version,
	})
	logger := uclog.WithComponent("main")

	cfg := controller.Config{
		URL:                   *controllerURL,
		Site:                  *site,
		APIKey:                *apiKey,
		Username:              *username,
		Password:              *password,
		CAPath:                *caPath,
		Timeout:               *timeout,
		RefreshInterval:       *refreshInterval,
		BandwidthPollInterval: *healthInterval,
		WebsocketEnabled:      !*noWebsocket,
	}
	switch *authMode {
	case "api-key":
		cfg.Auth = controller.AuthAPIKey
	case "credentials":
		cfg.Auth = controller.AuthCredentials
	case "hybrid":
		cfg.Auth = controller.AuthHybrid
	case "cloud":
		cfg.Auth = controller.AuthCloud
	default:
		logger.Fatal().Str("auth", *authMode).Msg("unknown auth mode")
	}
	switch {
	case *insecure:
		cfg.TLSMode = httpx.TLSAcceptAllInvalid
	case *caPath != "":
		cfg.TLSMode = httpx.TLSCustomCA
	default:
		cfg.TLSMode = httpx.TLSSystemRoots
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *oneshot {
		if err := runOneshot(ctx, cfg); err != nil {
			logger.Fatal().Err(err).Msg("oneshot failed")
		}
		return
	}

	ctrl, err := controller.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	defer ctrl.Close()

	logger.Info().Str(uclog.FieldBaseURL, maskURL(cfg.URL)).Str(uclog.FieldSite, cfg.Site).Msg("connecting")
	if err := ctrl.Connect(ctx); err != nil {
		logger.Fatal().Err(err).Msg("connect failed")
	}
	for _, w := range ctrl.TakeWarnings() {
		logger.Warn().Msg(w)
	}

	srv := ops.New(ctrl, *opsAddr)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("ops server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops shutdown failed")
	}
	ctrl.Disconnect(shutdownCtx)
}

// siteSummary is the -oneshot output shape.
type siteSummary struct {
	SiteID   string `json:"siteId"`
	Site     string `json:"site"`
	Devices  int    `json:"devices"`
	Clients  int    `json:"clients"`
	Networks int    `json:"networks"`
	Wifi     int    `json:"wifiBroadcasts"`
}

func runOneshot(ctx context.Context, cfg controller.Config) error {
	return controller.Oneshot(ctx, cfg, func(c *controller.Controller) error {
		siteID, slug := c.Site()
		summary := siteSummary{
			SiteID:   siteID,
			Site:     slug,
			Devices:  len(c.Devices()),
			Clients:  len(c.Clients()),
			Networks: len(c.Networks()),
			Wifi:     len(c.WifiBroadcasts()),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	})
}
