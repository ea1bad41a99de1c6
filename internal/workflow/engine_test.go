package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/workflow"
)

// mockTaskRepo fails the test on any call whose func field is unset.
type mockTaskRepo struct {
	t *testing.T

	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	updateFieldsFunc  func(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	countByStatusFunc func(ctx context.Context, status domain.TaskStatus) (int, error)
}

func (m *mockTaskRepo) Create(context.Context, *domain.Task) error {
	m.t.Fatal("unexpected Create")
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.getByIDFunc == nil {
		m.t.Fatal("unexpected GetByID")
	}
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) List(context.Context) ([]*domain.Task, error) {
	m.t.Fatal("unexpected List")
	return nil, nil
}

func (m *mockTaskRepo) ListByStatus(context.Context, domain.TaskStatus) ([]*domain.Task, error) {
	m.t.Fatal("unexpected ListByStatus")
	return nil, nil
}

func (m *mockTaskRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if m.updateFieldsFunc == nil {
		m.t.Fatal("unexpected UpdateFields")
	}
	return m.updateFieldsFunc(ctx, id, patch)
}

func (m *mockTaskRepo) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	if m.countByStatusFunc == nil {
		m.t.Fatal("unexpected CountByStatus")
	}
	return m.countByStatusFunc(ctx, status)
}

func (m *mockTaskRepo) Delete(context.Context, uuid.UUID) error {
	m.t.Fatal("unexpected Delete")
	return nil
}

func taskIn(status domain.TaskStatus) *domain.Task {
	return &domain.Task{ID: uuid.New(), Title: "t", Description: "d", Status: status}
}

func found(task *domain.Task) func(context.Context, uuid.UUID) (*domain.Task, error) {
	return func(context.Context, uuid.UUID) (*domain.Task, error) {
		c := *task
		return &c, nil
	}
}

func applied(task *domain.Task) func(context.Context, uuid.UUID, domain.TaskPatch) (*domain.Task, error) {
	return func(_ context.Context, _ uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
		c := *task
		patch.Apply(&c)
		return &c, nil
	}
}

func TestEngine_RequestTransition_Allowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to domain.TaskStatus
	}{
		{domain.TaskStatusBacklog, domain.TaskStatusTodo},
		{domain.TaskStatusTodo, domain.TaskStatusBacklog},
		{domain.TaskStatusTodo, domain.TaskStatusDoing},
		{domain.TaskStatusDoing, domain.TaskStatusTodo},
		{domain.TaskStatusDoing, domain.TaskStatusDone},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			t.Parallel()

			task := taskIn(tc.from)
			repo := &mockTaskRepo{
				t:                t,
				getByIDFunc:      found(task),
				updateFieldsFunc: applied(task),
			}
			if tc.to == domain.TaskStatusDoing {
				repo.countByStatusFunc = func(_ context.Context, s domain.TaskStatus) (int, error) {
					assert.Equal(t, domain.TaskStatusDoing, s)
					return 1, nil
				}
			}

			got, from, err := workflow.NewEngine().RequestTransition(context.Background(), repo, task.ID, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.to, got.Status)
			assert.Equal(t, tc.from, from)
		})
	}
}

func TestEngine_RequestTransition_Refused(t *testing.T) {
	t.Parallel()

	allowed := map[[2]domain.TaskStatus]bool{
		{domain.TaskStatusBacklog, domain.TaskStatusTodo}: true,
		{domain.TaskStatusTodo, domain.TaskStatusBacklog}: true,
		{domain.TaskStatusTodo, domain.TaskStatusDoing}:   true,
		{domain.TaskStatusDoing, domain.TaskStatusTodo}:   true,
		{domain.TaskStatusDoing, domain.TaskStatusDone}:   true,
	}

	type refused struct {
		name string
		from domain.TaskStatus
		to   domain.TaskStatus
		msg  string
	}
	var tests []refused
	for _, from := range domain.TaskStatuses {
		for _, to := range domain.TaskStatuses {
			if allowed[[2]domain.TaskStatus{from, to}] {
				continue
			}
			msg := "Cannot change status to " + string(to) + " from " + string(from)
			if from == domain.TaskStatusDone {
				msg = "Cannot change status of a DONE task"
			}
			tests = append(tests, refused{string(from) + " to " + string(to), from, to, msg})
		}
	}
	require.Len(t, tests, 11)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// No count and no write may happen for a refused edge.
			repo := &mockTaskRepo{t: t, getByIDFunc: found(taskIn(tc.from))}

			got, _, err := workflow.NewEngine().RequestTransition(context.Background(), repo, uuid.New(), tc.to)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestEngine_RequestTransition_Capacity(t *testing.T) {
	t.Parallel()

	t.Run("at limit", func(t *testing.T) {
		t.Parallel()

		repo := &mockTaskRepo{
			t:           t,
			getByIDFunc: found(taskIn(domain.TaskStatusTodo)),
			countByStatusFunc: func(context.Context, domain.TaskStatus) (int, error) {
				return domain.MaxDoingTasks, nil
			},
		}

		_, _, err := workflow.NewEngine().RequestTransition(context.Background(), repo, uuid.New(), domain.TaskStatusDoing)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
		assert.Equal(t, "Cannot have more than 2 tasks with status DOING", err.Error())
	})

	t.Run("leaving doing is not counted", func(t *testing.T) {
		t.Parallel()

		task := taskIn(domain.TaskStatusDoing)
		repo := &mockTaskRepo{
			t:                t,
			getByIDFunc:      found(task),
			updateFieldsFunc: applied(task),
		}

		got, _, err := workflow.NewEngine().RequestTransition(context.Background(), repo, task.ID, domain.TaskStatusTodo)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
	})

	t.Run("count failure is a store error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		repo := &mockTaskRepo{
			t:           t,
			getByIDFunc: found(taskIn(domain.TaskStatusTodo)),
			countByStatusFunc: func(context.Context, domain.TaskStatus) (int, error) {
				return 0, boom
			},
		}

		_, _, err := workflow.NewEngine().RequestTransition(context.Background(), repo, uuid.New(), domain.TaskStatusDoing)
		require.ErrorIs(t, err, boom)
		var te *domain.TransitionError
		assert.False(t, errors.As(err, &te))
	})
}

func TestEngine_RequestTransition_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockTaskRepo{
		t: t,
		getByIDFunc: func(context.Context, uuid.UUID) (*domain.Task, error) {
			return nil, domain.ErrNotFound
		},
	}

	_, _, err := workflow.NewEngine().RequestTransition(context.Background(), repo, uuid.New(), domain.TaskStatusTodo)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Task not found", err.Error())

	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.TransitionNotFound, te.Kind)
}

func TestEngine_RequestTransition_LoadFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("pool closed")
	repo := &mockTaskRepo{
		t: t,
		getByIDFunc: func(context.Context, uuid.UUID) (*domain.Task, error) {
			return nil, boom
		},
	}

	_, _, err := workflow.NewEngine().RequestTransition(context.Background(), repo, uuid.New(), domain.TaskStatusTodo)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
