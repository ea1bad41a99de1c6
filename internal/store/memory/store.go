// Package memory is an in-process task store. Transactions are serialized by a
// store-wide lock and work on a private copy that replaces the committed state
// only when the transaction function succeeds.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/kanban/internal/domain"
)

type Store struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	now   func() time.Time
}

func New() *Store {
	return &Store{
		tasks: make(map[uuid.UUID]*domain.Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithinTx runs fn against a snapshot of the store. The snapshot is committed
// when fn returns nil and the context is still live; otherwise it is dropped.
func (s *Store) WithinTx(ctx context.Context, fn domain.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory.WithinTx: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &taskTx{tasks: make(map[uuid.UUID]*domain.Task, len(s.tasks)), now: s.now}
	for id, t := range s.tasks {
		tx.tasks[id] = clone(t)
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory.WithinTx: commit: %w", err)
	}

	s.tasks = tx.tasks
	return nil
}

// taskTx implements domain.TaskRepository over one transaction's working copy.
type taskTx struct {
	tasks map[uuid.UUID]*domain.Task
	now   func() time.Time
}

func (r *taskTx) Create(_ context.Context, t *domain.Task) error {
	if _, exists := r.tasks[t.ID]; exists {
		return fmt.Errorf("memory.Create: %w", domain.ErrConflict)
	}
	if t.Title == "" || t.Description == "" || !t.Status.Valid() {
		return fmt.Errorf("memory.Create: %w", domain.ErrInvalidInput)
	}
	r.tasks[t.ID] = clone(t)
	return nil
}

func (r *taskTx) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("memory.GetByID: %w", domain.ErrNotFound)
	}
	return clone(t), nil
}

func (r *taskTx) List(_ context.Context) ([]*domain.Task, error) {
	return r.collect(func(*domain.Task) bool { return true }), nil
}

func (r *taskTx) ListByStatus(_ context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	return r.collect(func(t *domain.Task) bool { return t.Status == status }), nil
}

func (r *taskTx) UpdateFields(_ context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("memory.UpdateFields: %w", domain.ErrNotFound)
	}
	patch.Apply(t)
	t.UpdatedAt = r.now()
	return clone(t), nil
}

func (r *taskTx) CountByStatus(_ context.Context, status domain.TaskStatus) (int, error) {
	n := 0
	for _, t := range r.tasks {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *taskTx) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("memory.Delete: %w", domain.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

// collect returns matching tasks ordered like the Postgres store: created_at, id.
func (r *taskTx) collect(keep func(*domain.Task) bool) []*domain.Task {
	out := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, clone(t))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func clone(t *domain.Task) *domain.Task {
	c := *t
	return &c
}
