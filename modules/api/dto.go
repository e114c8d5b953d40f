package api

import (
	taskdomain "github.com/example/task-tracker/domain/task"
	userdomain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/notification"
)

// Envelope is the common part of every response body.
type Envelope struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

// TaskEnvelope carries a single task.
type TaskEnvelope struct {
	Envelope
	Task *taskdomain.Task `json:"task,omitempty"`
}

// TasksEnvelope carries a task list.
type TasksEnvelope struct {
	Envelope
	Tasks []taskdomain.Task `json:"tasks"`
}

// UsersEnvelope carries the user directory.
type UsersEnvelope struct {
	Envelope
	Users []userdomain.User `json:"users"`
}

// NotificationsEnvelope carries the actor's notifications.
type NotificationsEnvelope struct {
	Envelope
	Notifications []notification.Notification `json:"notifications"`
}

// CreateTaskRequest is the HTTP request for creating a task.
// DueDate accepts YYYY-MM-DD or RFC 3339.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  string `json:"assignee_id"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskRequest is the HTTP request for a partial update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

func ok(msg string) Envelope {
	return Envelope{Status: true, Msg: msg}
}

func failed(msg string) Envelope {
	return Envelope{Status: false, Msg: msg}
}
