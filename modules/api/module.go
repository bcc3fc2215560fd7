package api

import (
	"context"
	"fmt"
	"time"

	"github.com/Aswath1709/task-manager-app/modules/tasks"
	"github.com/Aswath1709/task-manager-app/modules/users"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config holds HTTP server settings.
type Config struct {
	Port int
	// AdminUsernames may call the /admin routes.
	AdminUsernames []string
}

// APIModule is the HTTP front door for the task and user services.
type APIModule struct {
	app       *fiber.App
	cfg       Config
	taskPort  tasks.TaskPort
	userPort  users.UserPort
	logger    types.Logger
	startTime time.Time
}

var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

func NewModule(cfg Config, logger types.Logger) *APIModule {
	return &APIModule{cfg: cfg, logger: logger}
}

func (m *APIModule) Name() string {
	return "api"
}

func (m *APIModule) Dependencies() []string {
	return []string{"users", "tasks"}
}

func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "users":
		m.userPort = users.NewUserAdapter(container)
	case "tasks":
		m.taskPort = tasks.NewTaskAdapter(container)
	}
}

func (m *APIModule) Start(_ context.Context) error {
	if m.userPort == nil {
		return fmt.Errorf("users dependency not set")
	}
	if m.taskPort == nil {
		return fmt.Errorf("tasks dependency not set")
	}

	m.app = newApp(NewHandlers(m.taskPort, m.userPort, m.logger), m.userPort, m.cfg.AdminUsernames)
	m.startTime = time.Now()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.cfg.Port)); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.cfg.Port, "admins", len(m.cfg.AdminUsernames))
	return nil
}

func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// newApp builds the Fiber app with middleware and routes.
func newApp(h *Handlers, userPort users.UserPort, admins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		ExposeHeaders: fiber.HeaderETag,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	app.Post("/users/register", h.Register)
	app.Post("/auth/login", h.Login)

	auth := AuthMiddleware(userPort)
	app.Get("/users/me", auth, h.Me)

	taskRoutes := app.Group("/tasks", auth)
	taskRoutes.Post("", h.CreateTask)
	taskRoutes.Get("", h.ListTasks)
	taskRoutes.Get("/search", h.SearchTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Patch("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	admin := app.Group("/admin", auth, AdminOnly(admins))
	admin.Post("/reindex", h.Reindex)

	return app
}
