package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

// TaskService abstracts task operations for handler testing.
// *workflow.Service satisfies this interface.
type TaskService interface {
	CreateTask(ctx context.Context, title, description string) (*domain.Task, error)
	ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	EditTask(ctx context.Context, id uuid.UUID, title, description *string) (*domain.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	TransitionTask(ctx context.Context, id uuid.UUID, target domain.TaskStatus) (*domain.Task, error)
}
