package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

// Engine decides whether a task may move to a new status and persists the
// move when it may. It holds no state and no locks; every check runs against
// the repository of the caller's transaction.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// RequestTransition moves task id to target and returns the updated task
// together with the status it left. Refusals are returned as
// *domain.TransitionError; anything else is a store failure.
//
// Order of checks: existence, terminal source, adjacency, DOING capacity.
// The capacity count and the write share the caller's transaction.
func (e *Engine) RequestTransition(ctx context.Context, tasks domain.TaskRepository, id uuid.UUID, target domain.TaskStatus) (*domain.Task, domain.TaskStatus, error) {
	task, err := tasks.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.NewTaskNotFoundError()
	}
	if err != nil {
		return nil, "", fmt.Errorf("workflow.RequestTransition: load: %w", err)
	}

	if task.Status.Terminal() {
		return nil, "", domain.NewTerminalStatusError()
	}
	if !task.Status.ValidTransition(target) {
		return nil, "", domain.NewInvalidTransitionError(task.Status, target)
	}

	if target == domain.TaskStatusDoing {
		if err := checkCapacity(ctx, tasks, target, domain.MaxDoingTasks); err != nil {
			return nil, "", err
		}
	}

	updated, err := tasks.UpdateFields(ctx, id, domain.TaskPatch{Status: &target})
	if err != nil {
		return nil, "", fmt.Errorf("workflow.RequestTransition: update: %w", err)
	}

	return updated, task.Status, nil
}

func checkCapacity(ctx context.Context, tasks domain.TaskRepository, status domain.TaskStatus, limit int) error {
	n, err := tasks.CountByStatus(ctx, status)
	if err != nil {
		return fmt.Errorf("workflow.RequestTransition: count %s: %w", status, err)
	}
	if n >= limit {
		return domain.NewCapacityExceededError(status, limit)
	}
	return nil
}
