package task

import "fmt"

// Scope is a named filter predicate over an actor's tasks.
type Scope string

const (
	ScopeAll          Scope = "all"
	ScopeAssignedToMe Scope = "assignedToMe"
	ScopeCompleted    Scope = "completed"
)

// ParseScope converts s to a Scope. The empty string means ScopeAll.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeAssignedToMe:
		return ScopeAssignedToMe, nil
	case ScopeCompleted:
		return ScopeCompleted, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Filter combines a scope with an optional exact status match.
type Filter struct {
	Scope  Scope  `json:"scope,omitempty"`
	Status Status `json:"status,omitempty"`
}

// Query is the store predicate for a filter. Empty fields are unconstrained.
type Query struct {
	OwnerID    string
	AssigneeID string
	Status     Status
	// None is set when the filter can match no task.
	None bool
}

// Match reports whether t is visible to actor under f.
// Only tasks owned by actor are ever visible.
func (f Filter) Match(t Task, actor string) bool {
	if t.OwnerID != actor {
		return false
	}
	switch f.Scope {
	case ScopeAssignedToMe:
		if t.AssigneeID != actor {
			return false
		}
	case ScopeCompleted:
		if t.Status != StatusDone {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// Query renders f as a store predicate for actor.
func (f Filter) Query(actor string) Query {
	q := Query{OwnerID: actor, Status: f.Status}
	switch f.Scope {
	case ScopeAssignedToMe:
		q.AssigneeID = actor
	case ScopeCompleted:
		if f.Status != "" && f.Status != StatusDone {
			q.None = true
		}
		q.Status = StatusDone
	}
	return q
}

// Apply returns the tasks in order that match f for actor.
// The input slice is not modified.
func Apply(tasks []Task, actor string, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t, actor) {
			out = append(out, t)
		}
	}
	return out
}
