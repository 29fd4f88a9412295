package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics covers MongoDB command latency and the store circuit breaker.
type StoreMetrics struct {
	CommandDuration *prometheus.HistogramVec
	CommandErrors   *prometheus.CounterVec
	BreakerState    *prometheus.GaugeVec
	BreakerRejected prometheus.Counter
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "command_duration_seconds",
			Help:      "Duration of MongoDB commands in seconds, by command name.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "command_errors_total",
			Help:      "Total number of failed MongoDB commands, by command name.",
		}, []string{"command"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
		BreakerRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "circuit_breaker_rejected_total",
			Help:      "Total number of store calls rejected without reaching MongoDB.",
		}),
	}

	reg.MustRegister(m.CommandDuration, m.CommandErrors, m.BreakerState, m.BreakerRejected)
	return m
}
