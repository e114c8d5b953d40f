package client

import (
	"context"
	"errors"
	"sync"

	"github.com/example/task-tracker/domain/task"
	"golang.org/x/sync/errgroup"
)

// Listener is called with the new state after every transition.
type Listener func(State)

// Store owns the State and runs operations against a Transport.
// Every operation dispatches pending before the call and fulfilled or
// rejected after it. Completions are applied one at a time in the order
// they finish.
type Store struct {
	transport Transport

	// dispatchMu orders transitions and their notifications.
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State
	listeners  map[int]Listener
	nextID     int
}

// NewStore creates a Store in the initial state.
func NewStore(transport Transport) *Store {
	return &Store{
		transport: transport,
		state:     NewState(),
		listeners: make(map[int]Listener),
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a and notifies listeners in registration order.
// Listeners must not call Dispatch.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SetFilter selects the filter SelectFiltered derives with.
func (s *Store) SetFilter(f task.Filter) {
	s.Dispatch(Action{Op: OpSetFilter, Filter: f})
}

// ClearError clears the recorded failure messages.
func (s *Store) ClearError() {
	s.Dispatch(Action{Op: OpClearError})
}

// FetchTasks replaces the collection with the server's tasks under filter.
// A failed fetch keeps the previous collection.
func (s *Store) FetchTasks(ctx context.Context, filter task.Filter) error {
	s.Dispatch(Action{Op: OpFetch, Phase: PhasePending})

	tasks, err := s.transport.ListTasks(ctx, filter)
	if err != nil {
		s.Dispatch(Action{Op: OpFetch, Phase: PhaseRejected, Err: errorMessage(err, "Failed to fetch tasks")})
		return err
	}

	s.Dispatch(Action{Op: OpFetch, Phase: PhaseFulfilled, Tasks: tasks})
	return nil
}

// CreateTask creates a task and appends the server's copy.
func (s *Store) CreateTask(ctx context.Context, in task.NewTask) (*task.Task, error) {
	s.Dispatch(Action{Op: OpCreate, Phase: PhasePending})

	created, err := s.transport.CreateTask(ctx, in)
	if err != nil {
		s.Dispatch(Action{Op: OpCreate, Phase: PhaseRejected, Err: errorMessage(err, "Failed to create task")})
		return nil, err
	}

	s.Dispatch(Action{Op: OpCreate, Phase: PhaseFulfilled, Task: created})
	return created, nil
}

// UpdateTask updates a task and replaces the cached entry in place.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch task.Patch) (*task.Task, error) {
	s.Dispatch(Action{Op: OpUpdate, Phase: PhasePending})

	updated, err := s.transport.UpdateTask(ctx, taskID, patch)
	if err != nil {
		s.Dispatch(Action{Op: OpUpdate, Phase: PhaseRejected, Err: errorMessage(err, "Failed to update task")})
		return nil, err
	}

	s.Dispatch(Action{Op: OpUpdate, Phase: PhaseFulfilled, Task: updated})
	return updated, nil
}

// DeleteTask deletes a task and removes it from the collection.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	s.Dispatch(Action{Op: OpDelete, Phase: PhasePending})

	if err := s.transport.DeleteTask(ctx, taskID); err != nil {
		s.Dispatch(Action{Op: OpDelete, Phase: PhaseRejected, Err: errorMessage(err, "Failed to delete task")})
		return err
	}

	s.Dispatch(Action{Op: OpDelete, Phase: PhaseFulfilled, TaskID: taskID})
	return nil
}

// FetchUsers loads the user directory.
func (s *Store) FetchUsers(ctx context.Context) error {
	s.Dispatch(Action{Op: OpFetchUsers, Phase: PhasePending})

	users, err := s.transport.ListUsers(ctx)
	if err != nil {
		s.Dispatch(Action{Op: OpFetchUsers, Phase: PhaseRejected, Err: errorMessage(err, "Failed to fetch users")})
		return err
	}

	s.Dispatch(Action{Op: OpFetchUsers, Phase: PhaseFulfilled, Users: users})
	return nil
}

// Load fetches tasks and users concurrently. A failure in one does not
// cancel the other.
func (s *Store) Load(ctx context.Context, filter task.Filter) error {
	var g errgroup.Group
	g.Go(func() error { return s.FetchTasks(ctx, filter) })
	g.Go(func() error { return s.FetchUsers(ctx) })
	return g.Wait()
}

// errorMessage returns the server's message, or fallback when the
// failure never reached the server.
func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	return fallback
}
