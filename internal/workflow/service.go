package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/domain"
)

// EventPublisher fans board changes out to live clients.
// *notify.Notifier and *redis.PubSub satisfy this interface.
type EventPublisher interface {
	PublishBoardEvent(ctx context.Context, ev domain.BoardEvent) error
}

type nopPublisher struct{}

func (nopPublisher) PublishBoardEvent(context.Context, domain.BoardEvent) error { return nil }

// Service runs every task operation in exactly one store transaction and
// announces committed changes on the board feed.
type Service struct {
	tx     domain.Transactor
	engine *Engine
	events EventPublisher
}

// NewService creates a Service. events may be nil when no live feed is configured.
func NewService(tx domain.Transactor, events EventPublisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{
		tx:     tx,
		engine: NewEngine(),
		events: events,
	}
}

func (s *Service) CreateTask(ctx context.Context, title, description string) (*domain.Task, error) {
	t, err := domain.NewTask(title, description)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tasks domain.TaskRepository) error {
		return tasks.Create(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("workflow.CreateTask: %w", err)
	}

	s.publish(ctx, domain.BoardEvent{Type: domain.BoardEventTaskCreated, TaskID: t.ID, Task: t})
	return t, nil
}

// ListTasks returns every task, or only those in status when it is non-nil.
func (s *Service) ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	var out []*domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tasks domain.TaskRepository) error {
		var err error
		if status != nil {
			out, err = tasks.ListByStatus(ctx, *status)
		} else {
			out, err = tasks.List(ctx)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("workflow.ListTasks: %w", err)
	}
	return out, nil
}

func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var out *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tasks domain.TaskRepository) error {
		var err error
		out, err = tasks.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("workflow.GetTask: %w", err)
	}
	return out, nil
}

// EditTask changes title and/or description. Status is never touched here;
// status changes go through TransitionTask.
func (s *Service) EditTask(ctx context.Context, id uuid.UUID, title, description *string) (*domain.Task, error) {
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, fmt.Errorf("workflow.EditTask: %w: title must not be blank", domain.ErrInvalidInput)
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return nil, fmt.Errorf("workflow.EditTask: %w: description must not be blank", domain.ErrInvalidInput)
	}
	patch := domain.TaskPatch{Title: title, Description: description}

	var out *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tasks domain.TaskRepository) error {
		var err error
		if patch.Empty() {
			out, err = tasks.GetByID(ctx, id)
			return err
		}
		out, err = tasks.UpdateFields(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("workflow.EditTask: %w", err)
	}

	if !patch.Empty() {
		s.publish(ctx, domain.BoardEvent{Type: domain.BoardEventTaskUpdated, TaskID: out.ID, Task: out})
	}
	return out, nil
}

func (s *Service) DeleteTask(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tasks domain.TaskRepository) error {
		return tasks.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("workflow.DeleteTask: %w", err)
	}

	s.publish(ctx, domain.BoardEvent{Type: domain.BoardEventTaskDeleted, TaskID: id})
	return nil
}

// TransitionTask runs the transition engine for id inside one transaction.
// The returned error wraps *domain.TransitionError for every refusal.
func (s *Service) TransitionTask(ctx context.Context, id uuid.UUID, target domain.TaskStatus) (*domain.Task, error) {
	var (
		out  *domain.Task
		from domain.TaskStatus
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tasks domain.TaskRepository) error {
		var err error
		out, from, err = s.engine.RequestTransition(ctx, tasks, id, target)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("workflow.TransitionTask: %w", err)
	}

	s.publish(ctx, domain.BoardEvent{Type: domain.BoardEventTaskMoved, TaskID: out.ID, From: from, Task: out})
	return out, nil
}

func (s *Service) publish(ctx context.Context, ev domain.BoardEvent) {
	if err := s.events.PublishBoardEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Str("task_id", ev.TaskID.String()).Msg("board event publish failed")
	}
}
