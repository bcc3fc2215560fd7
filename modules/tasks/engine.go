package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

const defaultReindexConcurrency = 8

// Engine keeps the document store authoritative and mirrors every successful
// write into the search index. Every id-based operation is scoped to the
// owner: a task owned by someone else is reported as errs.ErrNotFound.
type Engine struct {
	store  TaskStore
	index  SearchIndex
	logger types.Logger
	now    func() time.Time

	reindexConcurrency int
	reindexGroup       singleflight.Group
}

// NewEngine creates a new Engine.
func NewEngine(store TaskStore, index SearchIndex, logger types.Logger) *Engine {
	return &Engine{
		store:              store,
		index:              index,
		logger:             logger,
		now:                time.Now,
		reindexConcurrency: defaultReindexConcurrency,
	}
}

// CreateTask validates and stores a new task, then mirrors it.
func (e *Engine) CreateTask(ctx context.Context, ownerID, title, description string, status task.Status) (task.Task, error) {
	doc, err := task.New(ownerID, title, description, status, e.now())
	if err != nil {
		return task.Task{}, err
	}

	created, err := e.store.Insert(ctx, doc)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}

	e.mirror(ctx, "upsert", created.ID, func(ctx context.Context) error {
		return e.index.Upsert(ctx, created.ID, created.Document)
	})
	return created, nil
}

// ListTasks returns the owner's tasks in view order.
func (e *Engine) ListTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	list, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// ListTasksByStatus returns the owner's tasks with the given status.
func (e *Engine) ListTasksByStatus(ctx context.Context, ownerID string, status task.Status) ([]task.Task, error) {
	if !status.Valid() {
		return nil, errs.Invalid("status", "unknown status "+string(status))
	}
	list, err := e.store.ListByOwnerAndStatus(ctx, ownerID, status)
	if err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	return list, nil
}

// GetTask returns the task if it exists and belongs to ownerID.
func (e *Engine) GetTask(ctx context.Context, ownerID, id string) (task.Task, error) {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	if t.OwnerID != ownerID {
		return task.Task{}, fmt.Errorf("get task: %w", errs.ErrNotFound)
	}
	return t, nil
}

// UpdateTask merges patch onto the stored task and replaces it at the
// fetched revision. The owner, id and creation time are never changed.
func (e *Engine) UpdateTask(ctx context.Context, ownerID, id string, patch task.Patch) (task.Task, error) {
	cur, err := e.GetTask(ctx, ownerID, id)
	if err != nil {
		return task.Task{}, err
	}
	if patch.IfRevision != "" && patch.IfRevision != cur.Revision {
		return task.Task{}, &errs.ConflictError{ID: id, Expected: patch.IfRevision, Current: cur.Revision}
	}

	doc, err := patch.Apply(cur.Document)
	if err != nil {
		return task.Task{}, err
	}

	updated, err := e.store.Replace(ctx, id, cur.Revision, doc)
	if err != nil {
		return task.Task{}, fmt.Errorf("replace task: %w", err)
	}

	e.mirror(ctx, "upsert", id, func(ctx context.Context) error {
		return e.index.Upsert(ctx, id, updated.Document)
	})
	return updated, nil
}

// DeleteTask removes the owner's task from both stores.
func (e *Engine) DeleteTask(ctx context.Context, ownerID, id string) error {
	return e.DeleteTaskIfRevision(ctx, ownerID, id, "")
}

// DeleteTaskIfRevision is DeleteTask with an optional revision precondition.
// A concurrent write between fetch and delete surfaces as a conflict.
func (e *Engine) DeleteTaskIfRevision(ctx context.Context, ownerID, id, ifRevision string) error {
	cur, err := e.GetTask(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if ifRevision != "" && ifRevision != cur.Revision {
		return &errs.ConflictError{ID: id, Expected: ifRevision, Current: cur.Revision}
	}

	if err := e.store.Delete(ctx, id, cur.Revision); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	e.mirror(ctx, "remove", id, func(ctx context.Context) error {
		return e.index.Remove(ctx, id)
	})
	return nil
}

// SearchTasks runs a phrase-prefix search over the owner's tasks. A blank
// query lists every task. Index failures are returned since there is no
// other source for full-text results. Hits carry no revision.
func (e *Engine) SearchTasks(ctx context.Context, ownerID, query string) ([]task.Task, error) {
	if strings.TrimSpace(query) == "" {
		return e.ListTasks(ctx, ownerID)
	}

	hits, err := e.index.Search(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	out := make([]task.Task, 0, len(hits))
	for _, h := range hits {
		out = append(out, task.Task{ID: h.ID, Document: h.Document})
	}
	return out, nil
}

// mirror runs a search index write and logs, rather than returns, failure.
func (e *Engine) mirror(ctx context.Context, op, id string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		e.logger.Warn("Search index mirror failed", "op", op, "task_id", id, "error", err)
	}
}
