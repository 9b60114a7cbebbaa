package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes used as metric labels.
const (
	outcomeOK             = "ok"
	outcomeSessionExpired = "session_expired"
	outcomeDenied         = "denied"
	outcomeFailed         = "failed"
	outcomeMalformed      = "malformed"
	outcomeNetwork        = "network"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminctl_api_requests_total",
			Help: "Total number of network calls made to the admin API",
		},
		[]string{"method", "outcome"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adminctl_api_request_duration_seconds",
			Help:    "Admin API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "outcome"},
	)

	apiRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adminctl_api_requests_in_flight",
			Help: "Current number of admin API calls awaiting a response",
		},
	)

	apiSharedResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adminctl_api_shared_results_total",
			Help: "Callers whose result came from a call shared with identical concurrent callers",
		},
	)
)
