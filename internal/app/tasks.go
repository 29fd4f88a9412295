package app

import (
	"context"

	"github.com/pscheid92/syncvision/internal/domain"
	apperrors "github.com/pscheid92/syncvision/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	tracerName = "github.com/pscheid92/syncvision/internal/app"

	msgFetchFailed  = "Error fetching tasks"
	msgCreateFailed = "Error creating task"
)

// TaskService implements the task use cases on top of a TaskRepository.
type TaskService struct {
	tasks domain.TaskRepository
}

func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// ListTasks returns every stored task ordered by creation time. Each call
// reads the store, so a list requested after a successful create includes it.
func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TaskService.ListTasks")
	defer span.End()

	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, msgFetchFailed)
		return nil, apperrors.InternalError(msgFetchFailed, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	span.SetAttributes(attribute.Int("tasks.count", len(tasks)))
	return tasks, nil
}

// CreateTask validates body and stores the new task.
func (s *TaskService) CreateTask(ctx context.Context, body []byte) (*domain.Task, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TaskService.CreateTask")
	defer span.End()

	input, err := parseNewTask(body)
	if err != nil {
		// validation failures leave the span status unset
		span.SetAttributes(attribute.Bool("task.invalid", true))
		return nil, err
	}

	task, err := s.tasks.Insert(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, msgCreateFailed)
		return nil, apperrors.InternalError(msgCreateFailed, err)
	}
	span.SetAttributes(attribute.String("task.id", task.ID), attribute.String("task.status", string(task.Status)))
	return task, nil
}

// Ready reports whether the task store is reachable.
func (s *TaskService) Ready(ctx context.Context) error {
	return s.tasks.Ping(ctx)
}
