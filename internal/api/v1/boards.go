package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/kanban/internal/domain"
)

// Board groups every task by status. Each column keeps the list order.
type Board struct {
	Backlog []*domain.Task `json:"BACKLOG"`
	Todo    []*domain.Task `json:"TODO"`
	Doing   []*domain.Task `json:"DOING"`
	Done    []*domain.Task `json:"DONE"`
}

type GetBoardOutput struct {
	Body *Board
}

func RegisterBoardRoutes(api huma.API, svc TaskService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/board",
		Summary:     "Get the kanban board",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, _ *struct{}) (*GetBoardOutput, error) {
		tasks, err := svc.ListTasks(ctx, nil)
		if err != nil {
			return nil, toHTTPError("get-board", err)
		}

		board := &Board{
			Backlog: make([]*domain.Task, 0),
			Todo:    make([]*domain.Task, 0),
			Doing:   make([]*domain.Task, 0),
			Done:    make([]*domain.Task, 0),
		}

		for _, t := range tasks {
			switch t.Status {
			case domain.TaskStatusBacklog:
				board.Backlog = append(board.Backlog, t)
			case domain.TaskStatusTodo:
				board.Todo = append(board.Todo, t)
			case domain.TaskStatusDoing:
				board.Doing = append(board.Doing, t)
			case domain.TaskStatusDone:
				board.Done = append(board.Done, t)
			}
		}

		return &GetBoardOutput{Body: board}, nil
	})
}
