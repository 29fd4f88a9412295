package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"github.com/pscheid92/syncvision/internal/domain"
	"github.com/sony/gobreaker"
)

const (
	breakerMinRequests      = 5
	breakerFailureRatio     = 0.6
	breakerInterval         = 10 * time.Second
	breakerOpenTimeout      = 30 * time.Second
	breakerHalfOpenRequests = 1
)

// breaker fails store calls fast while MongoDB is unhealthy. It never retries.
type breaker struct {
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.StoreMetrics
}

func newBreaker(name string, m *metrics.StoreMetrics) *breaker {
	b := &breaker{metrics: m}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerHalfOpenRequests,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about the store
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			m.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	m.BreakerState.WithLabelValues(name).Set(stateToFloat(gobreaker.StateClosed))
	return b
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// execute runs fn through the breaker. A rejected call returns domain.ErrStoreUnavailable.
func (b *breaker) execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.metrics.BreakerRejected.Inc()
		return nil, domain.ErrStoreUnavailable
	}
	return v, err
}

func (b *breaker) state() gobreaker.State {
	return b.cb.State()
}
