package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
)

// NotificationModule tells assignees about tasks other users own.
// It subscribes to task events and resolves owner names through the user directory.
type NotificationModule struct {
	store    *Store
	userPort user.UserPort
	now      func() time.Time
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.DependentModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)

func NewModule() *NotificationModule {
	return &NotificationModule{
		store: NewStore(),
		now:   time.Now,
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Dependencies() []string {
	return []string{"user"}
}

func (m *NotificationModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "user" {
		m.userPort = user.NewUserAdapter(container)
	}
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-notifications", json.Unmarshal, json.Marshal, m.listNotifications,
	); err != nil {
		return fmt.Errorf("failed to register list-notifications service: %w", err)
	}

	log.Printf("[notification] Registered services: list-notifications")
	return nil
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *NotificationModule) handleTaskCreated(ctx context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	if event.AssigneeID == event.OwnerID {
		return nil
	}
	m.notify(event.AssigneeID, event.TaskID, TypeTaskAssigned,
		fmt.Sprintf("%s assigned you '%s'", m.displayName(ctx, event.OwnerID), event.Title))
	return nil
}

func (m *NotificationModule) handleTaskUpdated(ctx context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	if event.AssigneeID == event.OwnerID {
		return nil
	}
	owner := m.displayName(ctx, event.OwnerID)
	if slices.Contains(event.Changed, "assignee_id") {
		m.notify(event.AssigneeID, event.TaskID, TypeTaskAssigned,
			fmt.Sprintf("%s assigned you '%s'", owner, event.Title))
		return nil
	}
	m.notify(event.AssigneeID, event.TaskID, TypeTaskUpdated,
		fmt.Sprintf("%s updated '%s' (status: %s)", owner, event.Title, event.Status))
	return nil
}

func (m *NotificationModule) handleTaskDeleted(ctx context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	if event.AssigneeID == event.OwnerID {
		return nil
	}
	m.notify(event.AssigneeID, event.TaskID, TypeTaskDeleted,
		fmt.Sprintf("%s deleted '%s'", m.displayName(ctx, event.OwnerID), event.Title))
	return nil
}

// listNotifications handles the list-notifications service request.
func (m *NotificationModule) listNotifications(_ context.Context, req ListNotificationsRequest, _ *mono.Msg) (ListNotificationsResponse, error) {
	return ListNotificationsResponse{Notifications: m.store.List(req.UserID)}, nil
}

func (m *NotificationModule) notify(userID, taskID, notificationType, message string) {
	log.Printf("[notification] %s -> %s: %s", notificationType, userID, message)
	m.store.Add(Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		TaskID:    taskID,
		Type:      notificationType,
		Message:   message,
		CreatedAt: m.now(),
	})
}

// displayName falls back to the raw ID when the directory has no entry.
func (m *NotificationModule) displayName(ctx context.Context, userID string) string {
	if m.userPort == nil {
		return userID
	}
	u, err := m.userPort.GetUser(ctx, userID)
	if err != nil {
		return userID
	}
	return u.Name
}

func (m *NotificationModule) Start(_ context.Context) error {
	if m.userPort == nil {
		return fmt.Errorf("userPort dependency not set")
	}
	log.Println("[notification] Module started - listening for task events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}
