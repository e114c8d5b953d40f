package task

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(setupTestDB(t)), nil)
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.Status) *domain.Status { return &s }

func mustCreate(t *testing.T, svc *Service, actor string, in domain.NewTask) *domain.Task {
	t.Helper()
	created, err := svc.Create(context.Background(), actor, in)
	require.NoError(t, err)
	return created
}

func TestService_CreateDefaults(t *testing.T) {
	svc := setupService(t)

	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	assert.True(t, domain.ValidID(created.ID))
	assert.Equal(t, "alice", created.OwnerID)
	assert.Equal(t, "alice", created.AssigneeID)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Nil(t, created.DueDate)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestService_CreateWithAssigneeAndDueDate(t *testing.T) {
	svc := setupService(t)
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	created := mustCreate(t, svc, "alice", domain.NewTask{
		Title:       "t",
		Description: "d",
		AssigneeID:  "bob",
		Status:      domain.StatusInProgress,
		DueDate:     &due,
	})

	got, err := svc.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "bob", got.AssigneeID)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
}

func TestService_CreateValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", domain.NewTask{Description: "d"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Title of task is required", domain.Message(err))

	_, err = svc.Create(ctx, "alice", domain.NewTask{Title: "t"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Description of task is required", domain.Message(err))

	_, err = svc.Create(ctx, "alice", domain.NewTask{Title: "t", Description: "d", Status: "blocked"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	tasks, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestService_ListIsOwnerScoped(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	mine := mustCreate(t, svc, "alice", domain.NewTask{Title: "mine", Description: "d"})
	delegated := mustCreate(t, svc, "alice", domain.NewTask{Title: "for bob", Description: "d", AssigneeID: "bob"})
	mustCreate(t, svc, "bob", domain.NewTask{Title: "bob's", Description: "d", AssigneeID: "alice"})

	aliceTasks, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	require.Len(t, aliceTasks, 2)
	assert.Equal(t, mine.ID, aliceTasks[0].ID)
	assert.Equal(t, delegated.ID, aliceTasks[1].ID)

	// bob is the assignee of delegated but never sees it
	bobTasks, err := svc.List(ctx, "bob", domain.Filter{})
	require.NoError(t, err)
	require.Len(t, bobTasks, 1)
	assert.Equal(t, "bob's", bobTasks[0].Title)

	assigned, err := svc.List(ctx, "alice", domain.Filter{Scope: domain.ScopeAssignedToMe})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, mine.ID, assigned[0].ID)
}

func TestService_ListStatusFilter(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	mustCreate(t, svc, "alice", domain.NewTask{Title: "a", Description: "d"})
	done := mustCreate(t, svc, "alice", domain.NewTask{Title: "b", Description: "d", Status: domain.StatusDone})

	tasks, err := svc.List(ctx, "alice", domain.Filter{Status: domain.StatusDone})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, done.ID, tasks[0].ID)

	tasks, err = svc.List(ctx, "alice", domain.Filter{Scope: domain.ScopeCompleted})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, done.ID, tasks[0].ID)
}

// The in-memory filter and the store query must agree on every filter.
func TestService_ListMatchesApply(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	mustCreate(t, svc, "alice", domain.NewTask{Title: "1", Description: "d"})
	mustCreate(t, svc, "alice", domain.NewTask{Title: "2", Description: "d", AssigneeID: "bob", Status: domain.StatusDone})
	mustCreate(t, svc, "alice", domain.NewTask{Title: "3", Description: "d", Status: domain.StatusDone})
	mustCreate(t, svc, "alice", domain.NewTask{Title: "4", Description: "d", Status: domain.StatusInProgress})
	mustCreate(t, svc, "bob", domain.NewTask{Title: "5", Description: "d", AssigneeID: "alice"})

	everything, err := svc.store.Find(ctx, domain.Query{})
	require.NoError(t, err)
	all := make([]domain.Task, 0, len(everything))
	for _, task := range everything {
		all = append(all, *task)
	}

	scopes := []domain.Scope{domain.ScopeAll, domain.ScopeAssignedToMe, domain.ScopeCompleted}
	statuses := []domain.Status{"", domain.StatusTodo, domain.StatusInProgress, domain.StatusDone}

	for _, actor := range []string{"alice", "bob", "carol"} {
		for _, scope := range scopes {
			for _, status := range statuses {
				f := domain.Filter{Scope: scope, Status: status}

				listed, err := svc.List(ctx, actor, f)
				require.NoError(t, err)

				want := domain.Apply(all, actor, f)
				got := make([]domain.Task, 0, len(listed))
				for _, task := range listed {
					got = append(got, *task)
				}
				assert.Equal(t, taskIDs(want), taskIDs(got), "actor=%s filter=%+v", actor, f)
			}
		}
	}
}

func taskIDs(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestService_Get(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d", AssigneeID: "bob"})

	got, err := svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// the assignee cannot read it either
	_, err = svc.Get(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "alice", uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "alice", "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestService_UpdateOnlyChangesPresentFields(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d", AssigneeID: "bob"})

	updated, err := svc.Update(ctx, "alice", created.ID, domain.Patch{Status: statusPtr(domain.StatusDone)})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.OwnerID, updated.OwnerID)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.AssigneeID, updated.AssigneeID)
	assert.Equal(t, created.DueDate, updated.DueDate)
}

func TestService_UpdateForbiddenHasNoEffect(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d", AssigneeID: "bob"})

	_, err := svc.Update(ctx, "bob", created.ID, domain.Patch{
		Title:  strPtr("hijacked"),
		Status: statusPtr(domain.StatusDone),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "You can't update task of another user", domain.Message(err))

	got, err := svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, domain.StatusTodo, got.Status)
}

// Ownership is decided before the patch is looked at.
func TestService_UpdateForbiddenBeforeValidation(t *testing.T) {
	svc := setupService(t)
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	_, err := svc.Update(context.Background(), "bob", created.ID, domain.Patch{Status: statusPtr("bogus")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestService_UpdateErrors(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	_, err := svc.Update(ctx, "alice", "bad-id", domain.Patch{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Update(ctx, "alice", uuid.New().String(), domain.Patch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Task with given id not found", domain.Message(err))

	_, err = svc.Update(ctx, "alice", created.ID, domain.Patch{Status: statusPtr("archived")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_UpdateAcceptsEmptyTitle(t *testing.T) {
	svc := setupService(t)
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	updated, err := svc.Update(context.Background(), "alice", created.ID, domain.Patch{Title: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Title)
}

func TestService_UpdateIsIdempotent(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})
	patch := domain.Patch{Title: strPtr("renamed"), AssigneeID: strPtr("carol")}

	once, err := svc.Update(ctx, "alice", created.ID, patch)
	require.NoError(t, err)
	twice, err := svc.Update(ctx, "alice", created.ID, patch)
	require.NoError(t, err)

	once.UpdatedAt, twice.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, once, twice)
}

func TestService_Delete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d", AssigneeID: "bob"})

	_, err := svc.Delete(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "You can't delete task of another user", domain.Message(err))

	removed, err := svc.Delete(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = svc.Get(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Delete(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Delete(ctx, "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

// failingStore fails every call.
type failingStore struct{}

var errDiskGone = errors.New("disk gone")

func (failingStore) Find(context.Context, domain.Query) ([]*domain.Task, error) {
	return nil, errDiskGone
}
func (failingStore) FindByID(context.Context, string) (*domain.Task, error) { return nil, errDiskGone }
func (failingStore) Insert(context.Context, *domain.Task) error           { return errDiskGone }
func (failingStore) UpdateByID(context.Context, string, domain.Patch, time.Time) (*domain.Task, error) {
	return nil, errDiskGone
}
func (failingStore) DeleteByID(context.Context, string) (bool, error) { return false, errDiskGone }

func TestService_StoreUnavailable(t *testing.T) {
	svc := NewService(failingStore{}, nil)
	ctx := context.Background()
	id := uuid.New().String()

	_, err := svc.List(ctx, "alice", domain.Filter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, errDiskGone)
	assert.Equal(t, "Internal Server Error", domain.Message(err))

	_, err = svc.Get(ctx, "alice", id)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = svc.Create(ctx, "alice", domain.NewTask{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = svc.Update(ctx, "alice", id, domain.Patch{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = svc.Delete(ctx, "alice", id)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// memoryCache is a Cache backed by a map, storing JSON like the Redis cache does.
type memoryCache struct {
	mu       sync.Mutex
	items    map[string][]byte
	gens     map[string]int64
	hits     int
	failBump bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte), gens: make(map[string]int64)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memoryCache) Generation(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], nil
}

func (c *memoryCache) Bump(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failBump {
		return 0, errors.New("connection refused")
	}
	c.gens[key]++
	return c.gens[key], nil
}

func (c *memoryCache) setFailBump(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failBump = fail
}

func (c *memoryCache) hitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestService_CacheInvalidatedOnMutation(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(NewRepository(setupTestDB(t)), cache)
	ctx := context.Background()

	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	first, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, cache.hitCount())

	_, err = svc.Update(ctx, "alice", created.ID, domain.Patch{Status: statusPtr(domain.StatusDone)})
	require.NoError(t, err)

	completed, err := svc.List(ctx, "alice", domain.Filter{Scope: domain.ScopeCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)

	all, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusDone, all[0].Status)

	_, err = svc.Delete(ctx, "alice", created.ID)
	require.NoError(t, err)

	all, err = svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.Get(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_CachedGetStillOwnerScoped(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(NewRepository(setupTestDB(t)), cache)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	_, err := svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hitCount())

	_, err = svc.Get(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Get(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, cache.hitCount(), "another user's lookup is never cached")
}

// gatedStore holds the first call to method after it has read from the
// wrapped store, until release is closed.
type gatedStore struct {
	Store
	method  string
	held    atomic.Bool
	started chan struct{}
	release chan struct{}
}

func newGatedStore(inner Store, method string) *gatedStore {
	return &gatedStore{
		Store:   inner,
		method:  method,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) hold(method string) {
	if method != s.method || !s.held.CompareAndSwap(false, true) {
		return
	}
	close(s.started)
	<-s.release
}

func (s *gatedStore) Find(ctx context.Context, q domain.Query) ([]*domain.Task, error) {
	tasks, err := s.Store.Find(ctx, q)
	s.hold("Find")
	return tasks, err
}

func (s *gatedStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.Store.FindByID(ctx, id)
	s.hold("FindByID")
	return t, err
}

// A list that read the store before a concurrent create must not leave
// its result behind for later lists.
func TestService_ListRacingCreateDoesNotCacheStaleResult(t *testing.T) {
	cache := newMemoryCache()
	store := newGatedStore(NewRepository(setupTestDB(t)), "Find")
	svc := NewService(store, cache)
	ctx := context.Background()

	done := make(chan []*domain.Task)
	go func() {
		tasks, err := svc.List(ctx, "alice", domain.Filter{})
		assert.NoError(t, err)
		done <- tasks
	}()

	<-store.started
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})
	close(store.release)
	assert.Empty(t, <-done)

	tasks, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

// A get that read the task before a concurrent delete must not keep
// serving it afterwards.
func TestService_GetRacingDeleteDoesNotCacheStaleResult(t *testing.T) {
	cache := newMemoryCache()
	store := newGatedStore(NewRepository(setupTestDB(t)), "FindByID")
	svc := NewService(store, cache)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	done := make(chan error)
	go func() {
		_, err := svc.Get(ctx, "alice", created.ID)
		done <- err
	}()

	<-store.started
	_, err := svc.Delete(ctx, "alice", created.ID)
	require.NoError(t, err)
	close(store.release)
	assert.NoError(t, <-done)

	_, err = svc.Get(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_FailedBumpBypassesCache(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(NewRepository(setupTestDB(t)), cache)
	ctx := context.Background()

	tasks, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	cache.setFailBump(true)
	mustCreate(t, svc, "alice", domain.NewTask{Title: "first", Description: "d"})

	tasks, err = svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 0, cache.hitCount())

	cache.setFailBump(false)
	mustCreate(t, svc, "alice", domain.NewTask{Title: "second", Description: "d"})

	for range 2 {
		tasks, err = svc.List(ctx, "alice", domain.Filter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	}
	assert.Equal(t, 1, cache.hitCount())
}

func TestService_BumpDropsPreviousGeneration(t *testing.T) {
	cache := newMemoryCache()
	svc := NewService(NewRepository(setupTestDB(t)), cache)
	ctx := context.Background()
	created := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	_, err := svc.List(ctx, "alice", domain.Filter{})
	require.NoError(t, err)
	_, err = svc.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, cache.size())

	_, err = svc.Update(ctx, "alice", created.ID, domain.Patch{Title: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.size())
}

func TestService_UpdateUsesServiceClock(t *testing.T) {
	svc := setupService(t)
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	edited := created.Add(90 * time.Minute)

	svc.now = func() time.Time { return created }
	task := mustCreate(t, svc, "alice", domain.NewTask{Title: "t", Description: "d"})

	svc.now = func() time.Time { return edited }
	updated, err := svc.Update(context.Background(), "alice", task.ID, domain.Patch{Status: statusPtr(domain.StatusDone)})
	require.NoError(t, err)

	assert.True(t, created.Equal(updated.CreatedAt), "created_at = %s", updated.CreatedAt)
	assert.True(t, edited.Equal(updated.UpdatedAt), "updated_at = %s", updated.UpdatedAt)
}
