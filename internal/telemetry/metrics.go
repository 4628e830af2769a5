package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	HeartbeatsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bilberry",
			Name:      "heartbeats_accepted_total",
			Help:      "Heartbeats recorded in the liveness ledger.",
		},
	)

	HeartbeatsDuplicate = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bilberry",
			Name:      "heartbeats_duplicate_total",
			Help:      "Valid heartbeats that were already on record.",
		},
	)

	HeartbeatsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bilberry",
			Name:      "heartbeats_rejected_total",
			Help:      "Heartbeats rejected before reaching the ledger.",
		},
		[]string{"reason"},
	)

	SessionsRotated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bilberry",
			Name:      "sessions_rotated_total",
			Help:      "Completed session rotations.",
		},
	)

	AuthoritiesReportedOffline = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bilberry",
			Name:      "authorities_reported_offline_total",
			Help:      "Authorities handed to the offence sink.",
		},
	)

	ReporterFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bilberry",
			Name:      "reporter_failures_total",
			Help:      "Failed deliveries to the offence sink.",
		},
	)
)

func init() {
	Registry.MustRegister(
		HeartbeatsAccepted,
		HeartbeatsDuplicate,
		HeartbeatsRejected,
		SessionsRotated,
		AuthoritiesReportedOffline,
		ReporterFailures,
	)
}

// MetricsHandler exposes /metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
