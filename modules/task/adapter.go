package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListTasks lists the actor's tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, actorID string, filter domain.Filter) ([]domain.Task, error) {
	req := ListTasksRequest{ActorID: actorID, Filter: filter}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, callError("list-tasks", err)
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	req := GetTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, callError("get-task", err)
	}
	return resp.task()
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, actorID string, in domain.NewTask) (*domain.Task, error) {
	req := CreateTaskRequest{ActorID: actorID, Task: in}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, callError("create-task", err)
	}
	return resp.task()
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, actorID, taskID string, patch domain.Patch) (*domain.Task, error) {
	req := UpdateTaskRequest{ActorID: actorID, TaskID: taskID, Patch: patch}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, callError("update-task", err)
	}
	return resp.task()
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, actorID, taskID string) error {
	req := DeleteTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return callError("delete-task", err)
	}
	if err := resp.err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return domain.NewError(domain.ErrNotFound, "Task with given id not found")
	}
	return nil
}

// callError reports a failed service call as a store failure.
func callError(service string, err error) error {
	return &domain.Error{
		Kind:    domain.ErrStoreUnavailable,
		Message: "Internal Server Error",
		Err:     fmt.Errorf("%s service call failed: %w", service, err),
	}
}

// err rebuilds the domain error carried in a reply, if any.
func (e ServiceError) err() error {
	if e.Code == "" {
		return nil
	}
	return domain.FromCode(e.Code, e.Message)
}

func (r TaskResponse) task() (*domain.Task, error) {
	if err := r.err(); err != nil {
		return nil, err
	}
	if r.Task == nil {
		return nil, domain.NewError(domain.ErrStoreUnavailable, "Internal Server Error")
	}
	return r.Task, nil
}
