package metrics

import "github.com/prometheus/client_golang/prometheus"

// RelayMetrics covers the broadcast relay: membership, fan-out and the
// transport failures the relay swallows.
type RelayMetrics struct {
	ActiveConnections   prometheus.Gauge
	EventsReceived      prometheus.Counter
	EventsPublished     prometheus.Counter
	Deliveries          prometheus.Counter
	SlowClientsEvicted  prometheus.Counter
	TransportErrors     *prometheus.CounterVec
	ConnectionsRejected *prometheus.CounterVec
	SendDuration        prometheus.Histogram
	CommandQueueDepth   prometheus.Gauge
}

func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "active_connections",
			Help:      "Number of websocket connections currently registered with the relay.",
		}),
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "events_received_total",
			Help:      "Total number of well-formed inbound events.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "events_published_total",
			Help:      "Total number of events fanned out to the membership set.",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "deliveries_total",
			Help:      "Total number of frames enqueued to individual connections.",
		}),
		SlowClientsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "slow_clients_evicted_total",
			Help:      "Total number of connections evicted because their send buffer was full.",
		}),
		TransportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "transport_errors_total",
			Help:      "Total number of websocket write failures, by frame kind.",
		}, []string{"kind"}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "connections_rejected_total",
			Help:      "Total number of websocket upgrades rejected before registration, by reason.",
		}, []string{"reason"}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "send_duration_seconds",
			Help:      "Time spent writing one frame to a websocket.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		CommandQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "command_queue_depth",
			Help:      "Number of pending commands in the relay actor queue.",
		}),
	}

	reg.MustRegister(
		m.ActiveConnections,
		m.EventsReceived,
		m.EventsPublished,
		m.Deliveries,
		m.SlowClientsEvicted,
		m.TransportErrors,
		m.ConnectionsRejected,
		m.SendDuration,
		m.CommandQueueDepth,
	)
	return m
}
