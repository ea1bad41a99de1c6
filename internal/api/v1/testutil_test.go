package v1_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/kanban/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock TaskService
// ---------------------------------------------------------------------------

type mockTaskService struct {
	createTaskFunc     func(ctx context.Context, title, description string) (*domain.Task, error)
	listTasksFunc      func(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error)
	getTaskFunc        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	editTaskFunc       func(ctx context.Context, id uuid.UUID, title, description *string) (*domain.Task, error)
	deleteTaskFunc     func(ctx context.Context, id uuid.UUID) error
	transitionTaskFunc func(ctx context.Context, id uuid.UUID, target domain.TaskStatus) (*domain.Task, error)
}

func (m *mockTaskService) CreateTask(ctx context.Context, title, description string) (*domain.Task, error) {
	return m.createTaskFunc(ctx, title, description)
}

func (m *mockTaskService) ListTasks(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	return m.listTasksFunc(ctx, status)
}

func (m *mockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getTaskFunc(ctx, id)
}

func (m *mockTaskService) EditTask(ctx context.Context, id uuid.UUID, title, description *string) (*domain.Task, error) {
	return m.editTaskFunc(ctx, id, title, description)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.deleteTaskFunc(ctx, id)
}

func (m *mockTaskService) TransitionTask(ctx context.Context, id uuid.UUID, target domain.TaskStatus) (*domain.Task, error) {
	return m.transitionTaskFunc(ctx, id, target)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTask(title string, status domain.TaskStatus) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type errorBody struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func decodeError(t *testing.T, r io.Reader) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}
