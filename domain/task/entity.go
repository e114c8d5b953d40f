package task

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// IsValid reports whether s is one of the known task states.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is the core domain entity.
// OwnerID is set once at creation and is the only authorization anchor for mutation.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;type:text"`
	OwnerID     string     `json:"owner_id" gorm:"not null;index;type:text"`
	Title       string     `json:"title" gorm:"not null;type:text"`
	Description string     `json:"description" gorm:"not null;type:text"`
	AssigneeID  string     `json:"assignee_id" gorm:"index;type:text"`
	Status      Status     `json:"status" gorm:"not null;index;type:text;default:todo"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// NewTask is the caller-supplied input for creating a task.
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	Status      Status     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Fields returns the names of the fields present in the patch.
func (p Patch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.AssigneeID != nil {
		fields = append(fields, "assignee_id")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.DueDate != nil {
		fields = append(fields, "due_date")
	}
	return fields
}

// Columns returns the column/value pairs to write for the present fields.
func (p Patch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.AssigneeID != nil {
		cols["assignee_id"] = *p.AssigneeID
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	}
	return cols
}

// ValidID reports whether id is a well-formed task identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
