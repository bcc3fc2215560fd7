package main

import (
	"context"
	"log"
	"os"

	"github.com/Aswath1709/task-manager-app/config"
	"github.com/Aswath1709/task-manager-app/modules/api"
	"github.com/Aswath1709/task-manager-app/modules/docstore"
	"github.com/Aswath1709/task-manager-app/modules/search"
	"github.com/Aswath1709/task-manager-app/modules/tasks"
	"github.com/Aswath1709/task-manager-app/modules/users"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== Task Manager ===")
	log.Printf("Document store: %s", cfg.Docstore.Path)
	log.Printf("Search index: %s (redis %s)", cfg.Search.Index, cfg.Search.RedisAddr)
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	if cfg.UsesDefaultSecret() {
		log.Println("Warning: JWT_SECRET_KEY not set, using an insecure default")
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	docsModule := docstore.NewModule(cfg.Docstore, logger.WithModule("docstore"))
	searchModule := search.NewModule(cfg.Search, logger.WithModule("search"))

	// Storage modules first: users and tasks read their handles on Start.
	app.Register(docsModule)
	app.Register(searchModule)
	app.Register(users.NewModule(cfg.Users, docsModule, logger.WithModule("users")))
	app.Register(tasks.NewModule(cfg.Tasks, docsModule, searchModule, logger.WithModule("tasks")))
	app.Register(api.NewModule(api.Config{
		Port:           cfg.HTTPPort,
		AdminUsernames: cfg.AdminUsernames,
	}, logger.WithModule("api")))

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTPPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Printf("API available at http://localhost:%d", port)
	log.Println("Endpoints:")
	log.Println("  POST   /users/register      - Create an account")
	log.Println("  POST   /auth/login          - Obtain a bearer token")
	log.Println("  GET    /users/me            - Current user")
	log.Println("  POST   /tasks               - Create task")
	log.Println("  GET    /tasks?status=       - List tasks")
	log.Println("  GET    /tasks/search?q=     - Phrase-prefix search")
	log.Println("  GET    /tasks/:id           - Get task")
	log.Println("  PATCH  /tasks/:id           - Update task (honours If-Match)")
	log.Println("  DELETE /tasks/:id           - Delete task")
	log.Println("  POST   /admin/reindex       - Re-mirror all tasks into the search index (ADMIN_USERNAMES)")
	log.Println("  GET    /health              - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}
