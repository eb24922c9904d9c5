// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics holds the runtime's Prometheus collectors. Everything is
// registered on the default registry; the ops listener exposes it.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unictl_api_requests_total",
		Help: "Controller API requests by surface, operation and status code",
	}, []string{"surface", "op", "status"})

	apiRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unictl_api_request_seconds",
		Help:    "Controller API request latency by surface and operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"surface", "op"})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unictl_refresh_total",
		Help: "Full refresh outcomes",
	}, []string{"result"})

	streamReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unictl_event_stream_reconnects_total",
		Help: "Push stream reconnect attempts",
	})

	streamMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unictl_event_stream_messages_total",
		Help: "Push stream messages by key class (sync, update, event)",
	}, []string{"class"})

	subscriberLagTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unictl_event_subscriber_lag_total",
		Help: "Messages dropped for lagging event subscribers",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unictl_commands_total",
		Help: "Dispatched commands by name, surface and outcome",
	}, []string{"command", "surface", "result"})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "unictl_store_entities",
		Help: "Current entity count per kind",
	}, []string{"kind"})
)

// ObserveAPIRequest records one controller API request.
func ObserveAPIRequest(surface, op string, status int, seconds float64) {
	apiRequestsTotal.WithLabelValues(surface, op, strconv.Itoa(status)).Inc()
	apiRequestSeconds.WithLabelValues(surface, op).Observe(seconds)
}

// ObserveRefresh records a full refresh outcome ("ok" or "error").
func ObserveRefresh(result string) {
	refreshTotal.WithLabelValues(result).Inc()
}

// ObserveStreamReconnect counts one reconnect attempt.
func ObserveStreamReconnect() {
	streamReconnectsTotal.Inc()
}

// ObserveStreamMessage counts one push-stream message.
func ObserveStreamMessage(class string) {
	streamMessagesTotal.WithLabelValues(class).Inc()
}

// ObserveSubscriberLag counts messages dropped for a lagging subscriber.
func ObserveSubscriberLag(n uint64) {
	subscriberLagTotal.Add(float64(n))
}

// ObserveCommand records a dispatched command.
func ObserveCommand(command, surface, result string) {
	commandsTotal.WithLabelValues(command, surface, result).Inc()
}

// SetEntityCount publishes the current size of one store collection.
func SetEntityCount(kind string, n int) {
	entityCount.WithLabelValues(kind).Set(float64(n))
}
