package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/Aswath1709/task-manager-app/modules/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func statusPtr(s task.Status) *task.Status { return &s }

func TestTaskLifecycle(t *testing.T) {
	e, idx, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, "u1", "Buy milk", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Revision)
	assert.Equal(t, task.StatusPending, created.Status)
	assert.Equal(t, "u1", created.OwnerID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, idx.has(created.ID))

	updated, err := e.UpdateTask(ctx, "u1", created.ID, task.Patch{Status: statusPtr(task.StatusCompleted)})
	require.NoError(t, err)
	assert.NotEqual(t, created.Revision, updated.Revision)
	assert.Equal(t, task.StatusCompleted, updated.Status)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "u1", updated.OwnerID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	got, err := e.GetTask(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Revision, got.Revision)

	require.NoError(t, e.DeleteTask(ctx, "u1", created.ID))
	_, err = e.GetTask(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.False(t, idx.has(created.ID))

	hits, err := e.SearchTasks(ctx, "u1", "Buy milk")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCreateTaskValidation(t *testing.T) {
	e, idx, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateTask(ctx, "u1", "   ", "", "")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = e.CreateTask(ctx, "u1", "ok", "", task.Status("Someday"))
	assert.ErrorIs(t, err, errs.ErrValidation)

	assert.Zero(t, idx.upserts)
}

func TestOwnershipIsReportedAsNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	mine, err := e.CreateTask(ctx, "u1", "private", "secret", "")
	require.NoError(t, err)

	_, err = e.GetTask(ctx, "u2", mine.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = e.UpdateTask(ctx, "u2", mine.ID, task.Patch{Title: strPtr("stolen")})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = e.DeleteTask(ctx, "u2", mine.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, missingErr := e.GetTask(ctx, "u2", "does-not-exist")
	assert.Equal(t, errs.Code(missingErr), errs.Code(err))

	got, err := e.GetTask(ctx, "u1", mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
	assert.Equal(t, mine.Revision, got.Revision)
}

func TestUpdateCannotChangeOwner(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, "u1", "mine", "", "")
	require.NoError(t, err)

	updated, err := e.UpdateTask(ctx, "u1", created.ID, task.Patch{OwnerID: strPtr("u2"), Description: strPtr("more")})
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.OwnerID)
	assert.Equal(t, "more", updated.Description)

	list, err := e.ListTasks(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateWithStaleRevision(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, "u1", "t", "", "")
	require.NoError(t, err)

	patch := task.Patch{Title: strPtr("first"), IfRevision: created.Revision}
	_, err1 := e.UpdateTask(ctx, "u1", created.ID, patch)
	patch.Title = strPtr("second")
	_, err2 := e.UpdateTask(ctx, "u1", created.ID, patch)

	require.NoError(t, err1)
	assert.ErrorIs(t, err2, errs.ErrRevisionConflict)

	got, err := e.GetTask(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
}

func TestConcurrentUpdatesOneWins(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, "u1", "t", "", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = e.UpdateTask(ctx, "u1", created.ID, task.Patch{
				Description: strPtr("writer"),
				IfRevision:  created.Revision,
			})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrRevisionConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
}

func TestDeleteIfRevision(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, "u1", "t", "", "")
	require.NoError(t, err)
	_, err = e.UpdateTask(ctx, "u1", created.ID, task.Patch{Title: strPtr("t2")})
	require.NoError(t, err)

	err = e.DeleteTaskIfRevision(ctx, "u1", created.ID, created.Revision)
	assert.ErrorIs(t, err, errs.ErrRevisionConflict)

	_, err = e.GetTask(ctx, "u1", created.ID)
	assert.NoError(t, err)
}

func TestMirrorFailuresAreSwallowed(t *testing.T) {
	e, idx, logger := newTestEngine(t)
	ctx := context.Background()
	idx.setDown(true)

	created, err := e.CreateTask(ctx, "u1", "offline", "", "")
	require.NoError(t, err)

	_, err = e.UpdateTask(ctx, "u1", created.ID, task.Patch{Title: strPtr("still offline")})
	require.NoError(t, err)

	list, err := e.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, e.DeleteTask(ctx, "u1", created.ID))
	assert.Equal(t, 3, logger.warnCount())

	_, err = e.SearchTasks(ctx, "u1", "offline")
	assert.ErrorIs(t, err, errs.ErrIndexUnavailable)

	all, err := e.SearchTasks(ctx, "u1", " ")
	require.NoError(t, err, "blank search must not touch the index")
	assert.Empty(t, all)
}

func TestSearchTasks(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	milk, err := e.CreateTask(ctx, "u1", "Buy milk", "", "")
	require.NoError(t, err)
	_, err = e.CreateTask(ctx, "u1", "Call mom", "about the milkshake recipe", "")
	require.NoError(t, err)
	_, err = e.CreateTask(ctx, "u2", "Buy milk", "", "")
	require.NoError(t, err)

	hits, err := e.SearchTasks(ctx, "u1", "buy mi")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, milk.ID, hits[0].ID)
	assert.Empty(t, hits[0].Revision)

	hits, err = e.SearchTasks(ctx, "u1", "milk")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	all, err := e.SearchTasks(ctx, "u1", "")
	require.NoError(t, err)
	list, err := e.ListTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, list, all)
}

func TestSearchUsesOwnerFilterFromIndex(t *testing.T) {
	idx := &mockIndex{}
	e := NewEngine(newTestStore(t), idx, &mockLogger{})
	ctx := context.Background()

	hit := search.Hit{ID: "t9", Document: task.Document{Title: "x", OwnerID: "u1"}}
	idx.On("Search", mock.Anything, "x", "u1").Return([]search.Hit{hit}, nil).Once()

	got, err := e.SearchTasks(ctx, "u1", "x")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t9", got[0].ID)
	idx.AssertExpectations(t)
}

func TestListTasksByStatus(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := e.CreateTask(ctx, "u1", "a", "", task.StatusInProgress)
	require.NoError(t, err)
	_, err = e.CreateTask(ctx, "u1", "b", "", "")
	require.NoError(t, err)
	_, err = e.CreateTask(ctx, "u2", "c", "", task.StatusInProgress)
	require.NoError(t, err)

	list, err := e.ListTasksByStatus(ctx, "u1", task.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = e.UpdateTask(ctx, "u1", a.ID, task.Patch{Status: statusPtr(task.StatusCompleted)})
	require.NoError(t, err)
	list, err = e.ListTasksByStatus(ctx, "u1", task.StatusInProgress)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = e.ListTasksByStatus(ctx, "u1", task.Status("nope"))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateMirrorsExactDocument(t *testing.T) {
	idx := &mockIndex{}
	e := NewEngine(newTestStore(t), idx, &mockLogger{})
	ctx := context.Background()

	idx.On("Upsert", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(d task.Document) bool {
		return d.Title == "mirror me" && d.OwnerID == "u1" && d.Status == task.StatusPending
	})).Return(nil).Once()

	_, err := e.CreateTask(ctx, "u1", "mirror me", "", "")
	require.NoError(t, err)
	idx.AssertExpectations(t)
}
