package domain

import (
	"context"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every accepted status in display order. Task input
// validation accepts exactly these.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// Task is a tracked unit of work. ID is assigned by the store on insert.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	DueDate     time.Time  `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask is the validated input for creating a task.
type NewTask struct {
	Title       string
	Description string
	Status      TaskStatus
	AssignedTo  string
	DueDate     time.Time
}

type TaskRepository interface {
	// FindAll returns every task ordered by creation time.
	FindAll(ctx context.Context) ([]Task, error)
	Insert(ctx context.Context, task NewTask) (*Task, error)
	Ping(ctx context.Context) error
}
