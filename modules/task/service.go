package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	domain "github.com/example/task-tracker/domain/task"
)

// Cache is the read-through cache used for list and get.
// Keys embed a per-owner generation that every mutation bumps, so an entry
// written from a read that raced a mutation lands under a dead generation.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	DeletePattern(ctx context.Context, pattern string) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

// Service enforces task invariants and ownership on top of a Store.
// The actor passed to every method is trusted as already authenticated.
type Service struct {
	store Store
	cache Cache
	now   func() time.Time

	// unbumped holds owners whose last generation bump failed. Their
	// reads bypass the cache until a later bump succeeds.
	unbumped sync.Map
}

// NewService creates a new task service. cache may be nil.
func NewService(store Store, cache Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// List returns the actor's tasks matching f.
func (s *Service) List(ctx context.Context, actor string, f domain.Filter) ([]*domain.Task, error) {
	gen, cacheable := s.generation(ctx, actor)
	key := listKey(actor, gen, f)
	var cached []*domain.Task
	if cacheable && s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	tasks, err := s.store.Find(ctx, f.Query(actor))
	if err != nil {
		return nil, storeError(err)
	}

	if cacheable {
		s.cacheSet(ctx, key, tasks)
	}
	return tasks, nil
}

// Get returns a task owned by actor.
func (s *Service) Get(ctx context.Context, actor, id string) (*domain.Task, error) {
	if !domain.ValidID(id) {
		return nil, domain.NewError(domain.ErrInvalidID, "Task id not valid")
	}

	gen, cacheable := s.generation(ctx, actor)
	key := taskKey(actor, gen, id)
	var cached *domain.Task
	if cacheable && s.cacheGet(ctx, key, &cached) && cached != nil && cached.OwnerID == actor {
		return cached, nil
	}

	t, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "No task found")
	}
	if err != nil {
		return nil, storeError(err)
	}
	if t.OwnerID != actor {
		return nil, domain.NewError(domain.ErrNotFound, "No task found")
	}

	if cacheable {
		s.cacheSet(ctx, key, t)
	}
	return t, nil
}

// Create validates the input and persists a new task owned by actor.
func (s *Service) Create(ctx context.Context, actor string, in domain.NewTask) (*domain.Task, error) {
	if err := domain.ValidateNew(in); err != nil {
		return nil, err
	}

	now := s.now()
	t := &domain.Task{
		OwnerID:     actor,
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.AssigneeID == "" {
		t.AssigneeID = actor
	}
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, storeError(err)
	}

	s.invalidate(ctx, actor)
	return t, nil
}

// Update applies patch to a task owned by actor.
// Ownership is checked before any patch field is read.
func (s *Service) Update(ctx context.Context, actor, id string, patch domain.Patch) (*domain.Task, error) {
	if _, err := s.authorize(ctx, actor, id, "You can't update task of another user"); err != nil {
		return nil, err
	}
	if err := domain.ValidatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateByID(ctx, id, patch, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "Task with given id not found")
	}
	if err != nil {
		return nil, storeError(err)
	}

	s.invalidate(ctx, actor)
	return updated, nil
}

// Delete removes a task owned by actor and returns the removed task.
func (s *Service) Delete(ctx context.Context, actor, id string) (*domain.Task, error) {
	existing, err := s.authorize(ctx, actor, id, "You can't delete task of another user")
	if err != nil {
		return nil, err
	}

	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !deleted {
		return nil, domain.NewError(domain.ErrNotFound, "Task with given id not found")
	}

	s.invalidate(ctx, actor)
	return existing, nil
}

// authorize loads the task globally and checks that actor owns it.
func (s *Service) authorize(ctx context.Context, actor, id, forbidden string) (*domain.Task, error) {
	if !domain.ValidID(id) {
		return nil, domain.NewError(domain.ErrInvalidID, "Task id not valid")
	}

	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "Task with given id not found")
	}
	if err != nil {
		return nil, storeError(err)
	}

	if existing.OwnerID != actor {
		return nil, domain.NewError(domain.ErrForbidden, forbidden)
	}
	return existing, nil
}

func storeError(err error) error {
	log.Printf("[task] Store error: %v", err)
	return &domain.Error{Kind: domain.ErrStoreUnavailable, Message: "Internal Server Error", Err: err}
}

// ownerPrefix is the key namespace of one cache generation of owner's tasks.
func ownerPrefix(owner string, gen int64) string {
	return fmt.Sprintf("tasks:%s:g%d:", owner, gen)
}

func generationKey(owner string) string {
	return "tasks:" + owner + ":gen"
}

func listKey(owner string, gen int64, f domain.Filter) string {
	scope := f.Scope
	if scope == "" {
		scope = domain.ScopeAll
	}
	return fmt.Sprintf("%slist:%s:%s", ownerPrefix(owner, gen), scope, f.Status)
}

func taskKey(owner string, gen int64, id string) string {
	return ownerPrefix(owner, gen) + "task:" + id
}

// generation returns owner's current cache generation. The second result
// is false when reads for owner must go to the store.
func (s *Service) generation(ctx context.Context, owner string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	if _, stale := s.unbumped.Load(owner); stale {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, generationKey(owner))
	if err != nil {
		log.Printf("[task] Warning: cache generation for %s failed: %v", owner, err)
		return 0, false
	}
	return gen, true
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("[task] Warning: cache get %s failed: %v", key, err)
		return false
	}
	return found
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Printf("[task] Warning: cache set %s failed: %v", key, err)
	}
}

// invalidate moves owner to a new cache generation and drops the entries
// of the previous one. Runs after the store write has committed.
func (s *Service) invalidate(ctx context.Context, owner string) {
	if s.cache == nil {
		return
	}

	gen, err := s.cache.Bump(ctx, generationKey(owner))
	if err != nil {
		log.Printf("[task] Warning: cache bump for %s failed, bypassing cache: %v", owner, err)
		s.unbumped.Store(owner, struct{}{})
		return
	}
	s.unbumped.Delete(owner)

	if err := s.cache.DeletePattern(ctx, ownerPrefix(owner, gen-1)+"*"); err != nil {
		log.Printf("[task] Warning: cache cleanup for %s failed: %v", owner, err)
	}
}
