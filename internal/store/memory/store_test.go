package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/store/memory"
)

func newTask(t *testing.T, title string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(title, title+" description")
	require.NoError(t, err)
	return task
}

func seed(t *testing.T, s *memory.Store, tasks ...*domain.Task) {
	t.Helper()

	err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		for _, task := range tasks {
			if err := repo.Create(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func get(t *testing.T, s *memory.Store, id uuid.UUID) (*domain.Task, error) {
	t.Helper()

	var out *domain.Task
	err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		var err error
		out, err = repo.GetByID(ctx, id)
		return err
	})
	return out, err
}

func TestStore_CommitOnSuccess(t *testing.T) {
	t.Parallel()

	s := memory.New()
	task := newTask(t, "A")
	seed(t, s, task)

	got, err := get(t, s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, domain.TaskStatusBacklog, got.Status)
}

func TestStore_RollbackOnError(t *testing.T) {
	t.Parallel()

	s := memory.New()
	task := newTask(t, "A")
	seed(t, s, task)

	boom := errors.New("abort")
	status := domain.TaskStatusTodo
	err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		if _, err := repo.UpdateFields(ctx, task.ID, domain.TaskPatch{Status: &status}); err != nil {
			return err
		}
		if err := repo.Create(ctx, newTask(t, "B")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := get(t, s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusBacklog, got.Status, "update must be discarded")

	var all []*domain.Task
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		var err error
		all, err = repo.List(ctx)
		return err
	}))
	assert.Len(t, all, 1, "create must be discarded")
}

func TestStore_RollbackOnCancelledContext(t *testing.T) {
	t.Parallel()

	s := memory.New()
	task := newTask(t, "A")
	seed(t, s, task)

	ctx, cancel := context.WithCancel(context.Background())
	err := s.WithinTx(ctx, func(ctx context.Context, repo domain.TaskRepository) error {
		title := "changed"
		_, err := repo.UpdateFields(ctx, task.ID, domain.TaskPatch{Title: &title})
		cancel()
		return err
	})
	require.ErrorIs(t, err, context.Canceled)

	got, err := get(t, s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := memory.New()
	task := newTask(t, "A")
	seed(t, s, task)

	task.Title = "mutated after create"
	got, err := get(t, s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	got.Title = "mutated after read"
	again, err := get(t, s, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Title)
}

func TestStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("duplicate id", func(t *testing.T) {
		t.Parallel()

		s := memory.New()
		task := newTask(t, "A")
		seed(t, s, task)

		err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
			return repo.Create(ctx, task)
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()

		s := memory.New()
		task := newTask(t, "A")
		task.Status = "ARCHIVED"

		err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
			return repo.Create(ctx, task)
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()

	s := memory.New()
	id := uuid.New()

	err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		title := "x"
		_, err = repo.UpdateFields(ctx, id, domain.TaskPatch{Title: &title})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ListOrderAndCount(t *testing.T) {
	t.Parallel()

	s := memory.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b, c := newTask(t, "A"), newTask(t, "B"), newTask(t, "C")
	a.CreatedAt, b.CreatedAt, c.CreatedAt = base.Add(2*time.Second), base, base.Add(time.Second)
	c.Status = domain.TaskStatusDoing
	seed(t, s, a, b, c)

	err := s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"B", "C", "A"}, []string{all[0].Title, all[1].Title, all[2].Title})

		doing, err := repo.ListByStatus(ctx, domain.TaskStatusDoing)
		require.NoError(t, err)
		require.Len(t, doing, 1)
		assert.Equal(t, c.ID, doing[0].ID)

		n, err := repo.CountByStatus(ctx, domain.TaskStatusBacklog)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_UpdateFieldsBumpsUpdatedAt(t *testing.T) {
	t.Parallel()

	s := memory.New()
	task := newTask(t, "A")
	task.UpdatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, s, task)

	var updated *domain.Task
	status := domain.TaskStatusTodo
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, repo domain.TaskRepository) error {
		var err error
		updated, err = repo.UpdateFields(ctx, task.ID, domain.TaskPatch{Status: &status})
		return err
	}))

	assert.Equal(t, domain.TaskStatusTodo, updated.Status)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
}
