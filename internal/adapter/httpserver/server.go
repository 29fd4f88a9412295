package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"github.com/pscheid92/syncvision/internal/broadcast"
	"github.com/pscheid92/syncvision/internal/domain"
	"github.com/pscheid92/syncvision/internal/platform/config"
)

type taskService interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, body []byte) (*domain.Task, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	tasks    taskService
	relay    broadcast.Membership
	upgrader websocket.Upgrader
	limits   *ConnectionLimits

	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	relayMetrics *metrics.RelayMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, tasks taskService, relay broadcast.Membership, reg *prometheus.Registry, relayMetrics *metrics.RelayMetrics, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	srv := &Server{
		echo:   e,
		config: cfg,
		tasks:  tasks,
		relay:  relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     NewCheckOrigin(cfg),
		},
		limits:       NewConnectionLimits(cfg.MaxWebSocketConnections, cfg.MaxConnectionsPerIP),
		registry:     reg,
		httpMetrics:  metrics.NewHTTPMetrics(reg),
		relayMetrics: relayMetrics,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
