// Package client holds the locally cached copy of an actor's tasks and
// keeps it in step with the server.
//
// State only changes through Reduce. Store serializes completions and
// applies them in the order they finish, not the order they were issued.
package client

import (
	"slices"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// Status is the flight state of the most recent operation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Op names the operation an Action belongs to.
type Op string

const (
	OpFetch      Op = "fetch"
	OpCreate     Op = "create"
	OpUpdate     Op = "update"
	OpDelete     Op = "delete"
	OpFetchUsers Op = "fetchUsers"
	OpSetFilter  Op = "setFilter"
	OpClearError Op = "clearError"
)

// Phase is the lifecycle step of an asynchronous operation.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// State is the cached task collection plus its lifecycle.
// Tasks is one collection for the actor; filters are applied on read.
type State struct {
	Tasks  []task.Task
	Status Status
	Err    string
	Filter task.Filter

	Users       []user.User
	UsersStatus Status
	UsersErr    string
}

// NewState returns the initial state.
func NewState() State {
	return State{
		Tasks:       []task.Task{},
		Status:      StatusIdle,
		Filter:      task.Filter{Scope: task.ScopeAll},
		Users:       []user.User{},
		UsersStatus: StatusIdle,
	}
}

// Action is one state transition.
type Action struct {
	Op    Op
	Phase Phase

	Tasks  []task.Task
	Task   *task.Task
	TaskID string
	Users  []user.User
	Filter task.Filter
	Err    string
}

// Reduce returns the state after applying a. It never mutates s.
// Slices in the result are never shared with a slice that is later modified.
func Reduce(s State, a Action) State {
	switch a.Op {
	case OpSetFilter:
		s.Filter = a.Filter
		return s
	case OpClearError:
		s.Err = ""
		s.UsersErr = ""
		return s
	case OpFetchUsers:
		return reduceUsers(s, a)
	case OpFetch, OpCreate, OpUpdate, OpDelete:
	default:
		return s
	}

	switch a.Phase {
	case PhasePending:
		s.Status = StatusPending
		s.Err = ""
	case PhaseRejected:
		// the collection is left as it was
		s.Status = StatusRejected
		s.Err = a.Err
	case PhaseFulfilled:
		s.Status = StatusFulfilled
		s.Tasks = applyResult(s.Tasks, a)
	}
	return s
}

func applyResult(tasks []task.Task, a Action) []task.Task {
	switch a.Op {
	case OpFetch:
		if a.Tasks == nil {
			return []task.Task{}
		}
		return slices.Clone(a.Tasks)
	case OpCreate:
		if a.Task == nil {
			return tasks
		}
		next := make([]task.Task, 0, len(tasks)+1)
		next = append(next, tasks...)
		return append(next, *a.Task)
	case OpUpdate:
		if a.Task == nil {
			return tasks
		}
		i := slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == a.Task.ID })
		if i < 0 {
			// unknown id: dropped
			return tasks
		}
		next := slices.Clone(tasks)
		next[i] = *a.Task
		return next
	case OpDelete:
		match := func(t task.Task) bool { return t.ID == a.TaskID }
		if !slices.ContainsFunc(tasks, match) {
			return tasks
		}
		return slices.DeleteFunc(slices.Clone(tasks), match)
	}
	return tasks
}

func reduceUsers(s State, a Action) State {
	switch a.Phase {
	case PhasePending:
		s.UsersStatus = StatusPending
		s.UsersErr = ""
	case PhaseRejected:
		s.UsersStatus = StatusRejected
		s.UsersErr = a.Err
	case PhaseFulfilled:
		s.UsersStatus = StatusFulfilled
		if a.Users == nil {
			s.Users = []user.User{}
		} else {
			s.Users = slices.Clone(a.Users)
		}
	}
	return s
}
