package notification

import (
	"context"
	"time"
)

// Notification types.
const (
	TypeTaskAssigned = "task_assigned"
	TypeTaskUpdated  = "task_updated"
	TypeTaskDeleted  = "task_deleted"
)

// Notification is a message for an assignee about a task someone else owns.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ListNotificationsRequest is the request for listing a user's notifications.
type ListNotificationsRequest struct {
	UserID string `json:"user_id"`
}

// ListNotificationsResponse is the response for listing notifications, newest first.
type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// NotificationPort defines the notification operations used by other modules.
type NotificationPort interface {
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
}
