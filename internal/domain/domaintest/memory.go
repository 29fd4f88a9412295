package domaintest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/syncvision/internal/domain"
)

// MemoryTaskRepository keeps tasks in a slice. Test use only.
// Setting Err makes every call fail with it.
type MemoryTaskRepository struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	tasks     []domain.Task
	Err       error
	FindCalls int
}

func NewMemoryTaskRepository(clock clockwork.Clock) *MemoryTaskRepository {
	return &MemoryTaskRepository{clock: clock}
}

func (r *MemoryTaskRepository) FindAll(_ context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FindCalls++
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *MemoryTaskRepository) Insert(_ context.Context, in domain.NewTask) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	now := r.clock.Now().UTC().Truncate(time.Millisecond)
	task := domain.Task{
		ID:          newObjectIDHex(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.tasks = append(r.tasks, task)
	return &task, nil
}

func (r *MemoryTaskRepository) Ping(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Err
}

// Len returns the number of stored tasks.
func (r *MemoryTaskRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func newObjectIDHex() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
