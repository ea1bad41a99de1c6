package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/kanban/internal/domain"
)

type CreateTaskBody struct {
	Title       string `json:"title,omitempty" validate:"required,notblank,max=500" doc:"Task title"`
	Description string `json:"description,omitempty" validate:"required,notblank" doc:"Task description"`
}

type CreateTaskInput struct {
	Body CreateTaskBody
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	Status string `query:"status" doc:"Filter by status (BACKLOG, TODO, DOING, DONE)"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID string `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskBody struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,notblank,max=500" doc:"Task title"`
	Description *string `json:"description,omitempty" validate:"omitnil,notblank" doc:"Task description"`
}

type UpdateTaskInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body UpdateTaskBody
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type TransitionTaskStatusBody struct {
	Status string `json:"status,omitempty" validate:"required,oneof=BACKLOG TODO DOING DONE" doc:"Target status"`
}

type TransitionTaskStatusInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body TransitionTaskStatusBody
}

type TransitionTaskStatusOutput struct {
	Body *domain.Task
}

type MoveTaskBody struct {
	ID     string `json:"id,omitempty" validate:"required,uuid" doc:"Task ID"`
	Status string `json:"status,omitempty" validate:"required,oneof=BACKLOG TODO DOING DONE" doc:"Target status"`
}

type MoveTaskInput struct {
	Body MoveTaskBody
}

type DeleteTaskInput struct {
	ID string `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, svc TaskService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create a new task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		if err := validateBody(input.Body); err != nil {
			return nil, err
		}

		t, err := svc.CreateTask(ctx, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, toHTTPError("create-task", err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		status, err := parseStatusFilter(input.Status)
		if err != nil {
			return nil, err
		}

		tasks, err := svc.ListTasks(ctx, status)
		if err != nil {
			return nil, toHTTPError("list-tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		id, err := parseTaskID(input.ID)
		if err != nil {
			return nil, err
		}

		t, err := svc.GetTask(ctx, id)
		if err != nil {
			return nil, toHTTPError("get-task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Edit a task's title or description",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		id, err := parseTaskID(input.ID)
		if err != nil {
			return nil, err
		}
		if err := validateBody(input.Body); err != nil {
			return nil, err
		}

		t, err := svc.EditTask(ctx, id, input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, toHTTPError("update-task", err)
		}

		return &UpdateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-task-status",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/status",
		Summary:     "Transition task status",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TransitionTaskStatusInput) (*TransitionTaskStatusOutput, error) {
		id, err := parseTaskID(input.ID)
		if err != nil {
			return nil, err
		}
		if err := validateBody(input.Body); err != nil {
			return nil, err
		}

		t, err := svc.TransitionTask(ctx, id, domain.TaskStatus(input.Body.Status))
		if err != nil {
			return nil, toHTTPError("transition-task-status", err)
		}

		return &TransitionTaskStatusOutput{Body: t}, nil
	})

	// Same operation with the id in the body, as sent by the board client.
	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPatch,
		Path:        "/tasks",
		Summary:     "Move a task to another status",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *MoveTaskInput) (*TransitionTaskStatusOutput, error) {
		if err := validateBody(input.Body); err != nil {
			return nil, err
		}
		id, err := parseTaskID(input.Body.ID)
		if err != nil {
			return nil, err
		}

		t, err := svc.TransitionTask(ctx, id, domain.TaskStatus(input.Body.Status))
		if err != nil {
			return nil, toHTTPError("move-task", err)
		}

		return &TransitionTaskStatusOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{id}",
		Summary:       "Delete a task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		id, err := parseTaskID(input.ID)
		if err != nil {
			return nil, err
		}

		if err := svc.DeleteTask(ctx, id); err != nil {
			return nil, toHTTPError("delete-task", err)
		}

		return nil, nil
	})
}
