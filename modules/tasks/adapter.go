package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the tasks module's service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort from the container received through
// SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func single[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (task.Task, error) {
	var resp TaskResponse
	if err := call(ctx, container, service, req, &resp); err != nil {
		return task.Task{}, err
	}
	if err := resp.Error.Err(); err != nil {
		return task.Task{}, err
	}
	if resp.Task == nil {
		return task.Task{}, fmt.Errorf("%s service returned no task", service)
	}
	return *resp.Task, nil
}

func list[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) ([]task.Task, error) {
	var resp ListTasksResponse
	if err := call(ctx, container, service, req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []task.Task{}
	}
	return resp.Tasks, nil
}

func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (task.Task, error) {
	return single(ctx, a.container, ServiceCreate, req)
}

func (a *taskAdapter) GetTask(ctx context.Context, ownerID, taskID string) (task.Task, error) {
	return single(ctx, a.container, ServiceGet, &GetTaskRequest{OwnerID: ownerID, TaskID: taskID})
}

func (a *taskAdapter) ListTasks(ctx context.Context, ownerID string, status task.Status) ([]task.Task, error) {
	return list(ctx, a.container, ServiceList, &ListTasksRequest{OwnerID: ownerID, Status: status})
}

func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (task.Task, error) {
	return single(ctx, a.container, ServiceUpdate, req)
}

func (a *taskAdapter) DeleteTask(ctx context.Context, req *DeleteTaskRequest) error {
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDelete, req, &resp); err != nil {
		return err
	}
	return resp.Error.Err()
}

func (a *taskAdapter) SearchTasks(ctx context.Context, ownerID, query string) ([]task.Task, error) {
	return list(ctx, a.container, ServiceSearch, &SearchTasksRequest{OwnerID: ownerID, Query: query})
}

func (a *taskAdapter) Reindex(ctx context.Context) (ReindexResult, error) {
	var resp ReindexResponse
	if err := call(ctx, a.container, ServiceReindex, &ReindexRequest{}, &resp); err != nil {
		return ReindexResult{}, err
	}
	return resp.Result, resp.Error.Err()
}
