package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"github.com/pscheid92/syncvision/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	gomongo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const operationTimeout = 5 * time.Second

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	AssignedTo  string             `bson:"assignedTo,omitempty"`
	DueDate     time.Time          `bson:"dueDate"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toDomain() domain.Task {
	return domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		AssignedTo:  d.AssignedTo,
		DueDate:     d.DueDate.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// TaskRepo implements domain.TaskRepository on the tasks collection.
type TaskRepo struct {
	client     *gomongo.Client
	collection *gomongo.Collection
	clock      clockwork.Clock
	breaker    *breaker
}

var _ domain.TaskRepository = (*TaskRepo)(nil)

func NewTaskRepo(client *gomongo.Client, database string, clock clockwork.Clock, m *metrics.StoreMetrics) *TaskRepo {
	return &TaskRepo{
		client:     client,
		collection: client.Database(database).Collection(tasksCollection),
		clock:      clock,
		breaker:    newBreaker(tasksCollection, m),
	}
}

func (r *TaskRepo) FindAll(ctx context.Context) ([]domain.Task, error) {
	v, err := r.breaker.execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, operationTimeout)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
		cursor, err := r.collection.Find(ctx, bson.D{}, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to query tasks: %w", err)
		}

		var docs []taskDocument
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("failed to decode tasks: %w", err)
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}

	docs, _ := v.([]taskDocument)
	tasks := make([]domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

func (r *TaskRepo) Insert(ctx context.Context, in domain.NewTask) (*domain.Task, error) {
	// BSON datetimes carry millisecond precision
	now := r.clock.Now().UTC().Truncate(time.Millisecond)
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      string(in.Status),
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate.UTC().Truncate(time.Millisecond),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.breaker.execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, operationTimeout)
		defer cancel()

		if _, err := r.collection.InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to insert task: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	task := doc.toDomain()
	return &task, nil
}

// Ping checks the primary directly so readiness reflects MongoDB even while the breaker is open.
func (r *TaskRepo) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}
	return nil
}
