package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collab_ws_events_total",
		Help: "Inbound websocket events routed, by event name.",
	}, []string{"event"})

	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collab_ws_broadcasts_total",
		Help: "Messages fanned out to room members.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collab_rooms_active",
		Help: "Rooms with at least one admitted participant.",
	})

	Participants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collab_participants",
		Help: "Admitted participants across all rooms.",
	})

	PendingAdmissions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collab_pending_admissions",
		Help: "Join requests waiting for an admin decision.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
