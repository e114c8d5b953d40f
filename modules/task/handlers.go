package task

import (
	"context"
	"log"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
)

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.ActorID, req.Filter)
	if err != nil {
		return ListTasksResponse{ServiceError: toServiceError(err)}, nil
	}

	resp := ListTasksResponse{
		Tasks: make([]domain.Task, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, *t)
	}
	return resp, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.ActorID, req.TaskID)
	if err != nil {
		return TaskResponse{ServiceError: toServiceError(err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req.ActorID, req.Task)
	if err != nil {
		return TaskResponse{ServiceError: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:     t.ID,
			Title:      t.Title,
			OwnerID:    t.OwnerID,
			AssigneeID: t.AssigneeID,
			Status:     string(t.Status),
			CreatedAt:  t.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
		}
	}

	return TaskResponse{Task: t}, nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req.ActorID, req.TaskID, req.Patch)
	if err != nil {
		return TaskResponse{ServiceError: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:     t.ID,
			Title:      t.Title,
			OwnerID:    t.OwnerID,
			AssigneeID: t.AssigneeID,
			Status:     string(t.Status),
			Changed:    req.Patch.Fields(),
			UpdatedAt:  t.UpdatedAt,
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskUpdated event for task %s: %v", t.ID, err)
		}
	}

	return TaskResponse{Task: t}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.service.Delete(ctx, req.ActorID, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{ServiceError: toServiceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:     t.ID,
			Title:      t.Title,
			OwnerID:    t.OwnerID,
			AssigneeID: t.AssigneeID,
			DeletedAt:  m.service.now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", t.ID, err)
		}
	}

	return DeleteTaskResponse{Deleted: true}, nil
}

func toServiceError(err error) ServiceError {
	code := domain.Code(err)
	if code == "" {
		code = domain.CodeStoreUnavailable
	}
	return ServiceError{Code: code, Message: domain.Message(err)}
}
