package tasks

import (
	"context"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
)

// Service names registered by the tasks module.
const (
	ServiceCreate  = "create"
	ServiceGet     = "get"
	ServiceList    = "list"
	ServiceUpdate  = "update"
	ServiceDelete  = "delete"
	ServiceSearch  = "search"
	ServiceReindex = "reindex"
)

// ErrorInfo carries a taxonomy error across the request-reply boundary.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Code: errs.Code(err), Message: err.Error()}
}

// Err rebuilds the error, or returns nil for a nil ErrorInfo.
func (e *ErrorInfo) Err() error {
	if e == nil {
		return nil
	}
	return errs.FromCode(e.Code, e.Message)
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      task.Status `json:"status,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	OwnerID string `json:"owner_id"`
	TaskID  string `json:"task_id"`
}

// ListTasksRequest lists the owner's tasks, optionally by status.
type ListTasksRequest struct {
	OwnerID string      `json:"owner_id"`
	Status  task.Status `json:"status,omitempty"`
}

// UpdateTaskRequest is the request for patching a task.
type UpdateTaskRequest struct {
	OwnerID string     `json:"owner_id"`
	TaskID  string     `json:"task_id"`
	Patch   task.Patch `json:"patch"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	OwnerID    string `json:"owner_id"`
	TaskID     string `json:"task_id"`
	IfRevision string `json:"if_revision,omitempty"`
}

// SearchTasksRequest is a free-text search over the owner's tasks.
type SearchTasksRequest struct {
	OwnerID string `json:"owner_id"`
	Query   string `json:"query"`
}

// ReindexRequest triggers a reconciliation sweep.
type ReindexRequest struct{}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task  *task.Task `json:"task,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// ListTasksResponse is the response for list and search.
type ListTasksResponse struct {
	Tasks []task.Task `json:"tasks"`
	Total int         `json:"total"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool       `json:"deleted"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ReindexResponse reports the outcome of a sweep.
type ReindexResponse struct {
	Result ReindexResult `json:"result"`
	Error  *ErrorInfo    `json:"error,omitempty"`
}

// TaskPort is the contract driving adapters use to reach the tasks module.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (task.Task, error)
	GetTask(ctx context.Context, ownerID, taskID string) (task.Task, error)
	ListTasks(ctx context.Context, ownerID string, status task.Status) ([]task.Task, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (task.Task, error)
	DeleteTask(ctx context.Context, req *DeleteTaskRequest) error
	SearchTasks(ctx context.Context, ownerID, query string) ([]task.Task, error)
	Reindex(ctx context.Context) (ReindexResult, error)
}
