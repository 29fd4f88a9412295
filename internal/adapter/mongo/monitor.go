package mongo

import (
	"context"

	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"go.mongodb.org/mongo-driver/event"
)

// handshake and heartbeat commands would drown out the ones we care about
var ignoredCommands = map[string]struct{}{
	"hello":        {},
	"isMaster":     {},
	"ismaster":     {},
	"saslStart":    {},
	"saslContinue": {},
	"endSessions":  {},
}

func newCommandMonitor(m *metrics.StoreMetrics) *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			if _, skip := ignoredCommands[e.CommandName]; skip {
				return
			}
			m.CommandDuration.WithLabelValues(e.CommandName).Observe(e.Duration.Seconds())
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			if _, skip := ignoredCommands[e.CommandName]; skip {
				return
			}
			m.CommandDuration.WithLabelValues(e.CommandName).Observe(e.Duration.Seconds())
			m.CommandErrors.WithLabelValues(e.CommandName).Inc()
		},
	}
}
