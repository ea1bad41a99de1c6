package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gosuda/kanban/internal/domain"
)

// querier is the subset of pgx.Tx and *pgxpool.Pool used by TaskRepo.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const taskColumns = `id, title, description, status, created_at, updated_at`

type TaskRepo struct {
	q querier
}

func NewTaskRepo(q querier) *TaskRepo {
	return &TaskRepo{q: q}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Title, t.Description, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.List")
}

func (r *TaskRepo) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY created_at, id`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByStatus: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListByStatus")
}

// UpdateFields applies the non-nil fields of patch and returns the stored row.
func (r *TaskRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx,
		`UPDATE tasks SET
		        title       = COALESCE($1, title),
		        description = COALESCE($2, description),
		        status      = COALESCE($3, status),
		        updated_at  = now()
		 WHERE id = $4
		 RETURNING `+taskColumns,
		patch.Title, patch.Description, statusArg(patch.Status), id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.UpdateFields: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.UpdateFields: %w", mapError(err))
	}

	return t, nil
}

func (r *TaskRepo) CountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM tasks WHERE status = $1`,
		status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("taskRepo.CountByStatus: %w", err)
	}

	return n, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func statusArg(s *domain.TaskStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
