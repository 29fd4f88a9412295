package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pscheid92/syncvision/internal/adapter/httpserver"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"github.com/pscheid92/syncvision/internal/adapter/mongo"
	"github.com/pscheid92/syncvision/internal/app"
	"github.com/pscheid92/syncvision/internal/broadcast"
	"github.com/pscheid92/syncvision/internal/platform/config"
	"github.com/pscheid92/syncvision/internal/platform/logging"
	"github.com/pscheid92/syncvision/internal/platform/version"
)

func runGracefulShutdown(cfg *config.Config, srv *httpserver.Server, relay *broadcast.Relay, client *gomongo.Client, tp *sdktrace.TracerProvider) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		relay.Stop()

		if err := client.Disconnect(shutdownCtx); err != nil {
			slog.Error("MongoDB disconnect error", "error", err)
		}

		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error("Tracer provider shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

type connectFunc func(ctx context.Context, uri string, m *metrics.StoreMetrics) (*gomongo.Client, error)

// openStore connects once and prepares the indexes. A failed connect is
// returned as is, never retried.
func openStore(ctx context.Context, cfg *config.Config, m *metrics.StoreMetrics, connect connectFunc) (*gomongo.Client, error) {
	client, err := connect(ctx, cfg.MongoURI, m)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := mongo.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return client, nil
}

func setupMongo(cfg *config.Config, m *metrics.StoreMetrics) *gomongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := openStore(ctx, cfg, m, mongo.Connect)
	if err != nil {
		slog.Error("MongoDB setup failed", "error", err)
		os.Exit(1)
	}
	return client
}

// setupTracing installs a tracer provider so request and service spans carry
// trace IDs into the logs. Exporters attach via span processors.
func setupTracing() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())))
	otel.SetTracerProvider(tp)
	return tp
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "version", version.Get().String(), "env", cfg.AppEnv, "port", cfg.Port)

	tp := setupTracing()

	reg := metrics.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(reg)
	relayMetrics := metrics.NewRelayMetrics(reg)

	client := setupMongo(cfg, storeMetrics)

	repo := mongo.NewTaskRepo(client, cfg.MongoDatabase, clock, storeMetrics)
	tasks := app.NewTaskService(repo)
	relay := broadcast.NewRelay(clock, relayMetrics)

	healthChecks := []httpserver.HealthCheck{
		{Name: "mongo", Check: tasks.Ready},
	}
	srv := httpserver.NewServer(cfg, tasks, relay, reg, relayMetrics, healthChecks)

	done := runGracefulShutdown(cfg, srv, relay, client, tp)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
