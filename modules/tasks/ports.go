package tasks

import (
	"context"

	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/Aswath1709/task-manager-app/modules/search"
)

// TaskStore is the authoritative, revisioned task storage.
type TaskStore interface {
	Insert(ctx context.Context, doc task.Document) (task.Task, error)
	Get(ctx context.Context, id string) (task.Task, error)
	Replace(ctx context.Context, id, rev string, doc task.Document) (task.Task, error)
	Delete(ctx context.Context, id, rev string) error
	ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error)
	ListByOwnerAndStatus(ctx context.Context, ownerID string, status task.Status) ([]task.Task, error)
	All(ctx context.Context) ([]task.Task, error)
}

// SearchIndex is the best-effort full-text mirror of tasks.
type SearchIndex interface {
	Upsert(ctx context.Context, id string, doc task.Document) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query, ownerID string) ([]search.Hit, error)
	IDs(ctx context.Context) ([]string, error)
}
