package api

import "github.com/Aswath1709/task-manager-app/domain/task"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CredentialsRequest is the body for register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateTaskBody is the body for POST /tasks.
type CreateTaskBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateTaskBody is the body for PATCH /tasks/:id. Absent fields are kept.
type UpdateTaskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	OwnerID     *string `json:"ownerId"`
}

// TaskListResponse wraps list and search results.
type TaskListResponse struct {
	Tasks []task.Task `json:"tasks"`
	Total int         `json:"total"`
}
