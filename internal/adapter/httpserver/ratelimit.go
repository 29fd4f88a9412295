package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	apperrors "github.com/pscheid92/syncvision/internal/platform/errors"
	"golang.org/x/time/rate"
)

const rateLimiterExpiry = 5 * time.Minute

// newConnectionRateLimiter limits how fast one client IP may open new websocket connections.
func newConnectionRateLimiter(ratePerSecond float64, burst int, m *metrics.RelayMetrics) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			m.ConnectionsRejected.WithLabelValues(string(LimitReasonRate)).Inc()
			return apperrors.RateLimitedError("Too many connection attempts.").
				WithField("reason", string(LimitReasonRate))
		},
	})
}
