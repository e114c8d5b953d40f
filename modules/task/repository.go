package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a task row does not exist.
var ErrNotFound = errors.New("task row not found")

// Store is the persistence port used by the Service.
type Store interface {
	Find(ctx context.Context, q domain.Query) ([]*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Insert(ctx context.Context, t *domain.Task) error
	UpdateByID(ctx context.Context, id string, patch domain.Patch, at time.Time) (*domain.Task, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// Repository provides task storage backed by GORM.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Task{})
}

// Find returns the tasks matching q in creation order.
func (r *Repository) Find(ctx context.Context, q domain.Query) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	if q.None {
		return tasks, nil
	}

	tx := r.db.WithContext(ctx).Model(&domain.Task{})
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if q.AssigneeID != "" {
		tx = tx.Where("assignee_id = ?", q.AssigneeID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if err := tx.Order("created_at ASC").Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// Insert saves a new task, assigning its ID when empty.
func (r *Repository) Insert(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateByID writes the present patch fields, stamps updated_at with at and
// returns the stored task. Lookup, write and reload run in one transaction.
func (r *Repository) UpdateByID(ctx context.Context, id string, patch domain.Patch, at time.Time) (*domain.Task, error) {
	var updated domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		cols := patch.Columns()
		cols["updated_at"] = at
		if err := tx.Model(&domain.Task{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}

		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &updated, nil
}

// DeleteByID permanently removes a task. It reports whether a row was deleted.
func (r *Repository) DeleteByID(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected > 0, nil
}
