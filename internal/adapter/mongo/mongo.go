// Package mongo is the MongoDB-backed task store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"go.mongodb.org/mongo-driver/bson"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	tasksCollection = "tasks"
	connectTimeout  = 10 * time.Second
)

// Connect opens a client, attaches the command metrics monitor and pings
// the primary. The caller owns the returned client and must Disconnect it.
func Connect(ctx context.Context, uri string, m *metrics.StoreMetrics) (*gomongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("syncvision").
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetMonitor(newCommandMonitor(m))

	client, err := gomongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	slog.Info("MongoDB connected", "app_name", "syncvision")
	return client, nil
}

// EnsureIndexes creates the indexes the repository relies on. Safe to run on every start.
func EnsureIndexes(ctx context.Context, db *gomongo.Database) error {
	model := gomongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("createdAt_id"),
	}

	name, err := db.Collection(tasksCollection).Indexes().CreateOne(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to create index on %s: %w", tasksCollection, err)
	}

	slog.Info("MongoDB indexes ensured", "collection", tasksCollection, "index", name)
	return nil
}
