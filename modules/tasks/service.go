package tasks

import (
	"context"

	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/go-monolith/mono"
)

// Handlers report business errors inside the response so that callers can
// rebuild them with errors.Is intact.

func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.CreateTask(ctx, req.OwnerID, req.Title, req.Description, req.Status)
	if err != nil {
		return TaskResponse{Error: errorInfo(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

func (m *Module) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.GetTask(ctx, req.OwnerID, req.TaskID)
	if err != nil {
		return TaskResponse{Error: errorInfo(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

func (m *Module) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	var (
		list []task.Task
		err  error
	)
	if req.Status != "" {
		list, err = m.engine.ListTasksByStatus(ctx, req.OwnerID, req.Status)
	} else {
		list, err = m.engine.ListTasks(ctx, req.OwnerID)
	}
	if err != nil {
		return ListTasksResponse{Error: errorInfo(err)}, nil
	}
	return ListTasksResponse{Tasks: list, Total: len(list)}, nil
}

func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.engine.UpdateTask(ctx, req.OwnerID, req.TaskID, req.Patch)
	if err != nil {
		return TaskResponse{Error: errorInfo(err)}, nil
	}
	return TaskResponse{Task: &t}, nil
}

func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.engine.DeleteTaskIfRevision(ctx, req.OwnerID, req.TaskID, req.IfRevision); err != nil {
		return DeleteTaskResponse{Error: errorInfo(err)}, nil
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *Module) searchTasks(ctx context.Context, req SearchTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	list, err := m.engine.SearchTasks(ctx, req.OwnerID, req.Query)
	if err != nil {
		return ListTasksResponse{Error: errorInfo(err)}, nil
	}
	return ListTasksResponse{Tasks: list, Total: len(list)}, nil
}

func (m *Module) reindex(ctx context.Context, _ ReindexRequest, _ *mono.Msg) (ReindexResponse, error) {
	res, err := m.engine.Reindex(ctx)
	if err != nil {
		return ReindexResponse{Result: res, Error: errorInfo(err)}, nil
	}
	return ReindexResponse{Result: res}, nil
}
