// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ops is the operational HTTP surface of the daemon: liveness,
// readiness, a status summary and the Prometheus metrics endpoint.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/unictl/internal/controller"
	"github.com/ManuGH/unictl/internal/log"
)

const requestsPerMinute = 120

// Server serves the ops endpoints for one controller runtime.
type Server struct {
	ctrl   *controller.Controller
	http   *http.Server
	logger zerolog.Logger
}

// New builds the server on addr. Start actually binds.
func New(ctrl *controller.Controller, addr string) *Server {
	s := &Server{
		ctrl:   ctrl,
		logger: log.WithComponent("ops"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router returns the handler tree, exposed separately for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/statusz", s.handleStatusz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start binds and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("ops server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports ready only while the runtime holds a live connection.
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	state := s.ctrl.ConnectionState()
	if !s.ctrl.Connected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"phase":  state.Phase.String(),
			"reason": state.Reason,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Phase    string         `json:"phase"`
	SiteID   string         `json:"siteId,omitempty"`
	Site     string         `json:"site,omitempty"`
	Entities map[string]int `json:"entities"`
}

func (s *Server) handleStatusz(w http.ResponseWriter, _ *http.Request) {
	siteID, slug := s.ctrl.Site()
	resp := statusResponse{
		Phase:  s.ctrl.ConnectionState().Phase.String(),
		SiteID: siteID,
		Site:   slug,
		Entities: map[string]int{
			"devices":           len(s.ctrl.Devices()),
			"clients":           len(s.ctrl.Clients()),
			"networks":          len(s.ctrl.Networks()),
			"wifi_broadcasts":   len(s.ctrl.WifiBroadcasts()),
			"firewall_policies": len(s.ctrl.FirewallPolicies()),
			"firewall_zones":    len(s.ctrl.FirewallZones()),
			"acl_rules":         len(s.ctrl.AclRules()),
			"dns_policies":      len(s.ctrl.DnsPolicies()),
			"vouchers":          len(s.ctrl.Vouchers()),
			"traffic_lists":     len(s.ctrl.TrafficMatchingLists()),
			"sites":             len(s.ctrl.Sites()),
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
