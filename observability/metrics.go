package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signaling"

// Label values
const (
	JoinJoined   = "joined"
	JoinRejoined = "rejoined"
	JoinRoomFull = "room_full"

	RelayOffer  = "offer"
	RelayAnswer = "answer"

	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
)

// Metrics groups every collector exported by the signaling server.
type Metrics struct {
	Connections prometheus.Gauge
	Rooms       prometheus.Gauge
	RoomMembers prometheus.Gauge
	Joins       *prometheus.CounterVec
	Relays      *prometheus.CounterVec
	Departures  prometheus.Counter
	ProcessRSS  prometheus.Gauge
	ProcessCPU  prometheus.Gauge
}

// NewMetrics builds the collectors and registers them on reg.
// It panics on duplicate registration, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live signaling connections.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms with at least one member.",
		}),
		RoomMembers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_members",
			Help:      "Connections currently inside a room.",
		}),
		Joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Join attempts by result.",
		}, []string{"result"}),
		Relays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relays_total",
			Help:      "Relayed handshake messages by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Departures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "departures_total",
			Help:      "Members that left a room on disconnect or room change.",
		}),
		ProcessRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident memory of the server process.",
		}),
		ProcessCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage of the server process.",
		}),
	}
	reg.MustRegister(
		m.Connections, m.Rooms, m.RoomMembers,
		m.Joins, m.Relays, m.Departures,
		m.ProcessRSS, m.ProcessCPU,
	)
	return m
}
