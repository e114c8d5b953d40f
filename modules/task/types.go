package task

import (
	"context"

	domain "github.com/example/task-tracker/domain/task"
)

// ServiceError is the failure part of a reply.
// Domain failures travel in the reply rather than as transport errors.
type ServiceError struct {
	Code    string `json:"error_code,omitempty"`
	Message string `json:"error,omitempty"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	ActorID string        `json:"actor_id"`
	Filter  domain.Filter `json:"filter"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
	ServiceError
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	ActorID string         `json:"actor_id"`
	Task    domain.NewTask `json:"task"`
}

// UpdateTaskRequest is the request for updating a task.
type UpdateTaskRequest struct {
	ActorID string       `json:"actor_id"`
	TaskID  string       `json:"task_id"`
	Patch   domain.Patch `json:"patch"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task *domain.Task `json:"task,omitempty"`
	ServiceError
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ServiceError
}

// TaskPort defines the task operations available to other modules.
type TaskPort interface {
	ListTasks(ctx context.Context, actorID string, filter domain.Filter) ([]domain.Task, error)
	GetTask(ctx context.Context, actorID, taskID string) (*domain.Task, error)
	CreateTask(ctx context.Context, actorID string, in domain.NewTask) (*domain.Task, error)
	UpdateTask(ctx context.Context, actorID, taskID string, patch domain.Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, actorID, taskID string) error
}
