package api

import (
	"strings"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/Aswath1709/task-manager-app/modules/tasks"
	"github.com/Aswath1709/task-manager-app/modules/users"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers holds the HTTP handlers over the task and user ports.
type Handlers struct {
	tasks  tasks.TaskPort
	users  users.UserPort
	logger types.Logger
}

func NewHandlers(taskPort tasks.TaskPort, userPort users.UserPort, logger types.Logger) *Handlers {
	return &Handlers{tasks: taskPort, users: userPort, logger: logger}
}

// Register handles POST /users/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errs.Invalid("body", "malformed JSON"))
	}
	u, err := h.users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errs.Invalid("body", "malformed JSON"))
	}
	tok, err := h.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tok)
}

// Me handles GET /users/me.
func (h *Handlers) Me(c *fiber.Ctx) error {
	u, err := h.users.GetUser(c.UserContext(), ownerID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(u)
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, errs.Invalid("body", "malformed JSON"))
	}
	status, err := task.ParseStatus(body.Status)
	if err != nil {
		return writeError(c, err)
	}

	t, err := h.tasks.CreateTask(c.UserContext(), &tasks.CreateTaskRequest{
		OwnerID:     ownerID(c),
		Title:       body.Title,
		Description: body.Description,
		Status:      status,
	})
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderETag, etag(t.Revision))
	return c.Status(fiber.StatusCreated).JSON(t)
}

// ListTasks handles GET /tasks with an optional ?status= filter.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	status, err := task.ParseStatus(c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.tasks.ListTasks(c.UserContext(), ownerID(c), status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TaskListResponse{Tasks: list, Total: len(list)})
}

// SearchTasks handles GET /tasks/search?q=.
func (h *Handlers) SearchTasks(c *fiber.Ctx) error {
	list, err := h.tasks.SearchTasks(c.UserContext(), ownerID(c), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(TaskListResponse{Tasks: list, Total: len(list)})
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	t, err := h.tasks.GetTask(c.UserContext(), ownerID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderETag, etag(t.Revision))
	return c.JSON(t)
}

// UpdateTask handles PATCH /tasks/:id. An If-Match header pins the revision.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return writeError(c, errs.Invalid("body", "malformed JSON"))
	}

	patch := task.Patch{
		Title:       body.Title,
		Description: body.Description,
		OwnerID:     body.OwnerID,
		IfRevision:  ifMatch(c),
	}
	if body.Status != nil {
		status, err := task.ParseStatus(*body.Status)
		if err != nil {
			return writeError(c, err)
		}
		if status == "" {
			return writeError(c, errs.Invalid("status", "must not be empty"))
		}
		patch.Status = &status
	}
	if patch.Empty() {
		return writeError(c, errs.Invalid("body", "no updatable fields"))
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), &tasks.UpdateTaskRequest{
		OwnerID: ownerID(c),
		TaskID:  c.Params("id"),
		Patch:   patch,
	})
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderETag, etag(t.Revision))
	return c.JSON(t)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	err := h.tasks.DeleteTask(c.UserContext(), &tasks.DeleteTaskRequest{
		OwnerID:    ownerID(c),
		TaskID:     c.Params("id"),
		IfRevision: ifMatch(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reindex handles POST /admin/reindex.
func (h *Handlers) Reindex(c *fiber.Ctx) error {
	res, err := h.tasks.Reindex(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	h.logger.Info("Reindex requested", "user_id", ownerID(c), "indexed", res.Indexed, "removed", res.Removed, "failed", res.Failed)
	return c.JSON(res)
}

func etag(rev string) string {
	return `"` + rev + `"`
}

// ifMatch returns the revision from an If-Match header, if any.
func ifMatch(c *fiber.Ctx) string {
	v := strings.TrimSpace(c.Get(fiber.HeaderIfMatch))
	if v == "" || v == "*" {
		return ""
	}
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
