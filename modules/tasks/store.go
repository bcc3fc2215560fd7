package tasks

import (
	"context"

	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/Aswath1709/task-manager-app/modules/docstore"
)

// View names registered on the tasks collection.
const (
	ViewByOwner          = "by_owner"
	ViewByOwnerAndStatus = "by_owner_and_status"
	ViewByOwnerAndTitle  = "by_owner_and_title"
)

// Collection is the tasks collection with its secondary views.
var Collection = docstore.Collection{
	Name: "tasks",
	Views: []docstore.ViewDefinition{
		{Name: ViewByOwner, KeyFields: []string{"ownerId"}},
		{Name: ViewByOwnerAndStatus, KeyFields: []string{"ownerId", "status"}},
		{Name: ViewByOwnerAndTitle, KeyFields: []string{"ownerId", "title"}, ValueField: "description"},
	},
}

type documentStore struct {
	tasks *docstore.Typed[task.Document]
}

// NewTaskStore returns a TaskStore over the tasks collection of s. The
// collection must already be ensured.
func NewTaskStore(s *docstore.Store) TaskStore {
	return &documentStore{tasks: docstore.For[task.Document](s, Collection.Name)}
}

func (s *documentStore) Insert(ctx context.Context, doc task.Document) (task.Task, error) {
	rec, err := s.tasks.Insert(ctx, "", doc)
	if err != nil {
		return task.Task{}, err
	}
	return toTask(rec), nil
}

func (s *documentStore) Get(ctx context.Context, id string) (task.Task, error) {
	rec, err := s.tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	return toTask(rec), nil
}

func (s *documentStore) Replace(ctx context.Context, id, rev string, doc task.Document) (task.Task, error) {
	rec, err := s.tasks.Replace(ctx, id, rev, doc)
	if err != nil {
		return task.Task{}, err
	}
	return toTask(rec), nil
}

func (s *documentStore) Delete(ctx context.Context, id, rev string) error {
	return s.tasks.Delete(ctx, id, rev)
}

func (s *documentStore) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	return s.query(ctx, ViewByOwner, ownerID)
}

func (s *documentStore) ListByOwnerAndStatus(ctx context.Context, ownerID string, status task.Status) ([]task.Task, error) {
	return s.query(ctx, ViewByOwnerAndStatus, docstore.Key(ownerID, string(status)))
}

func (s *documentStore) All(ctx context.Context) ([]task.Task, error) {
	recs, err := s.tasks.All(ctx)
	if err != nil {
		return nil, err
	}
	return toTasks(recs), nil
}

func (s *documentStore) query(ctx context.Context, view string, key any) ([]task.Task, error) {
	recs, err := s.tasks.QueryView(ctx, view, key)
	if err != nil {
		return nil, err
	}
	return toTasks(recs), nil
}

func toTask(rec docstore.Record[task.Document]) task.Task {
	return task.Task{ID: rec.ID, Revision: rec.Revision, Document: rec.Doc}
}

func toTasks(recs []docstore.Record[task.Document]) []task.Task {
	out := make([]task.Task, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTask(rec))
	}
	return out
}
