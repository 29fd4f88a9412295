package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/syncvision/internal/broadcast"
	apperrors "github.com/pscheid92/syncvision/internal/platform/errors"
)

func (s *Server) registerSocketRoutes() {
	rateLimiter := newConnectionRateLimiter(s.config.ConnectionRatePerIP, s.config.ConnectionRateBurst, s.relayMetrics)
	s.echo.GET("/socket", s.handleSocket, rateLimiter)
}

// handleSocket upgrades the request and runs the connection's session until it disconnects.
func (s *Server) handleSocket(c echo.Context) error {
	ctx := c.Request().Context()
	ip := c.RealIP()

	if ok, reason := s.limits.Acquire(ip); !ok {
		s.relayMetrics.ConnectionsRejected.WithLabelValues(string(reason)).Inc()
		return apperrors.RateLimitedError("Too many connections.").WithField("reason", string(reason))
	}
	defer s.limits.Release(ip)

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written an error response
		s.relayMetrics.ConnectionsRejected.WithLabelValues("upgrade_failed").Inc()
		slog.DebugContext(ctx, "WebSocket upgrade failed", "error", err, "remote_ip", ip)
		return nil
	}

	session := broadcast.NewSession(conn, s.relay, s.relayMetrics, slog.Default().With("remote_ip", ip))
	session.Run(ctx)
	return nil
}
