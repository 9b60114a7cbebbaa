package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adminctl_realtime_connection_state",
			Help: "Realtime channel state (0=disconnected, 1=connecting, 2=connected)",
		},
	)

	eventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminctl_realtime_events_total",
			Help: "Realtime events received, by event name",
		},
		[]string{"event"},
	)

	connectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adminctl_realtime_connect_attempts_total",
			Help: "Realtime connection attempts, by transport and result",
		},
		[]string{"transport", "result"},
	)
)
