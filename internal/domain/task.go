package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusBacklog TaskStatus = "BACKLOG"
	TaskStatusTodo    TaskStatus = "TODO"
	TaskStatusDoing   TaskStatus = "DOING"
	TaskStatusDone    TaskStatus = "DONE"
)

// MaxDoingTasks is the store-wide limit on tasks in TaskStatusDoing.
const MaxDoingTasks = 2

// TaskStatuses lists every status in board column order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusDoing,
	TaskStatusDone,
}

// allowedTransitions is the complete adjacency set of the task lifecycle.
// Moves are one step forward or one step back; DONE has no outbound edge.
var allowedTransitions = map[TaskStatus]map[TaskStatus]struct{}{
	TaskStatusBacklog: {
		TaskStatusTodo: {},
	},
	TaskStatusTodo: {
		TaskStatusBacklog: {},
		TaskStatusDoing:   {},
	},
	TaskStatusDoing: {
		TaskStatusTodo: {},
		TaskStatusDone: {},
	},
	TaskStatusDone: {},
}

// ParseTaskStatus returns the TaskStatus named by s. Matching is exact.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, s)
	}
	return status, nil
}

func (s TaskStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no transition out of s exists.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDone
}

// ValidTransition checks if a task state transition is allowed.
// Allowed: BACKLOG->TODO, TODO->BACKLOG, TODO->DOING, DOING->TODO, DOING->DONE.
func (s TaskStatus) ValidTransition(to TaskStatus) bool {
	_, ok := allowedTransitions[s][to]
	return ok
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a Task in the initial BACKLOG state.
// Title and description are both required.
func NewTask(title, description string) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      TaskStatusBacklog,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Apply copies the set fields of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// TaskRepository is the typed accessor over the task store. Every method runs
// against the transaction the repository was obtained from.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	ListByStatus(ctx context.Context, status TaskStatus) ([]*Task, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch TaskPatch) (*Task, error)
	CountByStatus(ctx context.Context, status TaskStatus) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxFunc runs inside a single store transaction. Returning an error rolls the
// transaction back.
type TxFunc func(ctx context.Context, tasks TaskRepository) error

// Transactor opens all-or-nothing transactions over the task store.
// Implementations must make a count followed by a write serializable with
// respect to concurrent transactions, retrying internally when the store
// reports a serialization conflict.
type Transactor interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}
