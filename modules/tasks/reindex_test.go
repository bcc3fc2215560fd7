package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexRepairsDrift(t *testing.T) {
	e, idx, _ := newTestEngine(t)
	ctx := context.Background()

	idx.setDown(true)
	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		created, err := e.CreateTask(ctx, "u1", title, "", "")
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	idx.setDown(false)

	hits, err := e.SearchTasks(ctx, "u1", "two")
	require.NoError(t, err)
	assert.Empty(t, hits)

	res, err := e.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Indexed)
	assert.Zero(t, res.Failed)
	for _, id := range ids {
		assert.True(t, idx.has(id))
	}

	hits, err = e.SearchTasks(ctx, "u1", "two")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestReindexRemovesOrphans(t *testing.T) {
	e, idx, logger := newTestEngine(t)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, "u1", "Buy milk", "", "")
	require.NoError(t, err)
	kept, err := e.CreateTask(ctx, "u1", "Buy bread", "", "")
	require.NoError(t, err)

	idx.setDown(true)
	require.NoError(t, e.DeleteTask(ctx, "u1", created.ID))
	idx.setDown(false)
	assert.Equal(t, 1, logger.warnCount())

	hits, err := e.SearchTasks(ctx, "u1", "buy")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	res, err := e.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)
	assert.Equal(t, 1, res.Removed)
	assert.Zero(t, res.Failed)

	hits, err = e.SearchTasks(ctx, "u1", "buy")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, kept.ID, hits[0].ID)
	_, err = e.GetTask(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

// slowIndex blocks every upsert until release is closed.
type slowIndex struct {
	*fakeIndex
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

func (s *slowIndex) Upsert(ctx context.Context, id string, doc task.Document) error {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.fakeIndex.Upsert(ctx, id, doc)
}

func TestReindexSurvivesFirstCallerCancel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.Insert(ctx, task.Document{Title: "a", OwnerID: "u1", Status: task.StatusPending})
	require.NoError(t, err)

	idx := &slowIndex{fakeIndex: newFakeIndex(), entered: make(chan struct{}), release: make(chan struct{})}
	e := NewEngine(store, idx, &mockLogger{})

	firstCtx, cancel := context.WithCancel(ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := e.Reindex(firstCtx)
		firstErr <- err
	}()

	select {
	case <-idx.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not start")
	}
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	type outcome struct {
		res ReindexResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := e.Reindex(ctx)
		second <- outcome{res, err}
	}()
	close(idx.release)

	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Equal(t, 1, got.res.Indexed)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not finish")
	}
	assert.True(t, idx.has(mustOnlyID(t, store)))
}

func mustOnlyID(t *testing.T, store TaskStore) string {
	t.Helper()
	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	return all[0].ID
}

func TestReindexCountsFailures(t *testing.T) {
	e, idx, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateTask(ctx, "u1", "x", "", "")
	require.NoError(t, err)
	idx.setDown(true)

	res, err := e.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Indexed)
	// the upsert plus the index listing
	assert.Equal(t, 2, res.Failed)
}

// countingReindexer records how often Reindex is called.
type countingReindexer struct {
	calls atomic.Int32
	ch    chan struct{}
}

func (c *countingReindexer) Reindex(_ context.Context) (ReindexResult, error) {
	c.calls.Add(1)
	select {
	case c.ch <- struct{}{}:
	default:
	}
	return ReindexResult{}, nil
}

func TestReconcilerDisabledByDefault(t *testing.T) {
	r := NewReconciler(&countingReindexer{}, 0, false, &mockLogger{})
	assert.False(t, r.Enabled())
	r.Start()
	assert.NoError(t, r.Stop(context.Background()))
}

func TestReconcilerRunsOnStartAndTicks(t *testing.T) {
	target := &countingReindexer{ch: make(chan struct{}, 1)}
	r := NewReconciler(target, 10*time.Millisecond, true, &mockLogger{})
	r.Start()

	deadline := time.After(2 * time.Second)
	for target.calls.Load() < 3 {
		select {
		case <-target.ch:
		case <-deadline:
			t.Fatalf("reconciler ran %d times, want at least 3", target.calls.Load())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
	require.NoError(t, r.Stop(ctx))
}

func TestReconcilerRunOnceOnly(t *testing.T) {
	target := &countingReindexer{ch: make(chan struct{}, 1)}
	r := NewReconciler(target, 0, true, &mockLogger{})
	r.Start()

	select {
	case <-target.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("startup sweep did not run")
	}
	require.NoError(t, r.Stop(context.Background()))
	assert.EqualValues(t, 1, target.calls.Load())
}

func TestReindexConcurrentCallsShareWork(t *testing.T) {
	e, idx, _ := newTestEngine(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := e.CreateTask(ctx, "u1", "t", "", task.StatusPending)
		require.NoError(t, err)
	}
	before := idx.upserts

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Reindex(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	extra := idx.upserts - before
	assert.True(t, extra >= 5 && extra <= 20, "upserts = %d", extra)
	assert.Zero(t, extra%5)
}
