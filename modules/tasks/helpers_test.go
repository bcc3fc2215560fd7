package tasks

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/task"
	"github.com/Aswath1709/task-manager-app/modules/docstore"
	"github.com/Aswath1709/task-manager-app/modules/search"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/mock"
)

// mockLogger implements types.Logger for testing
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(msg string, _ ...any) {
	m.mu.Lock()
	m.warns = append(m.warns, msg)
	m.mu.Unlock()
}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func (m *mockLogger) warnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.warns)
}

// fakeIndex is an in-memory SearchIndex using the real query analyzer.
type fakeIndex struct {
	mu        sync.Mutex
	docs      map[string]task.Document
	down      bool
	upserts   int
	removes   int
	searchErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]task.Document)}
}

func (f *fakeIndex) Upsert(_ context.Context, id string, doc task.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errs.ErrIndexUnavailable
	}
	f.upserts++
	f.docs[id] = doc
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errs.ErrIndexUnavailable
	}
	f.removes++
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query, ownerID string) ([]search.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errs.ErrIndexUnavailable
	}
	q := search.ParseQuery(query)
	var hits []search.Hit
	for id, d := range f.docs {
		if d.OwnerID == ownerID && (q.Matches(d.Title) || q.Matches(d.Description)) {
			hits = append(hits, search.Hit{ID: id, Document: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })
	return hits, nil
}

func (f *fakeIndex) IDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errs.ErrIndexUnavailable
	}
	ids := make([]string, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeIndex) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeIndex) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}

// mockIndex is a testify mock of SearchIndex.
type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Upsert(ctx context.Context, id string, doc task.Document) error {
	return m.Called(ctx, id, doc).Error(0)
}

func (m *mockIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, query, ownerID string) ([]search.Hit, error) {
	args := m.Called(ctx, query, ownerID)
	hits, _ := args.Get(0).([]search.Hit)
	return hits, args.Error(1)
}

func (m *mockIndex) IDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func newTestStore(t testing.TB) TaskStore {
	t.Helper()
	s, err := docstore.Open(docstore.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureCollection(context.Background(), Collection); err != nil {
		t.Fatalf("ensure collection: %v", err)
	}
	return NewTaskStore(s)
}

func newTestEngine(t testing.TB) (*Engine, *fakeIndex, *mockLogger) {
	t.Helper()
	idx := newFakeIndex()
	logger := &mockLogger{}
	return NewEngine(newTestStore(t), idx, logger), idx, logger
}
