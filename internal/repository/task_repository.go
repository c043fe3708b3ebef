package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskChanges is a partial update. Nil fields are left untouched; ClearDueDate
// sets the due date to NULL and takes precedence over DueDate. UpdatedAt is the
// refreshed last-updated time (the current time when zero).
type TaskChanges struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	UpdatedAt    time.Time
}

// Empty reports whether no field was supplied.
func (c TaskChanges) Empty() bool {
	return c.Title == nil &&
		c.Description == nil &&
		c.Status == nil &&
		c.Priority == nil &&
		c.DueDate == nil &&
		!c.ClearDueDate
}

// Columns builds the column assignments for the supplied fields only, plus the
// refreshed updated_at.
func (c TaskChanges) Columns() map[string]interface{} {
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	columns := map[string]interface{}{"updated_at": updatedAt}

	if c.Title != nil {
		columns["title"] = *c.Title
	}
	if c.Description != nil {
		columns["description"] = *c.Description
	}
	if c.Status != nil {
		columns["status"] = *c.Status
	}
	if c.Priority != nil {
		columns["priority"] = *c.Priority
	}
	if c.ClearDueDate {
		columns["due_date"] = nil
	} else if c.DueDate != nil {
		columns["due_date"] = *c.DueDate
	}

	return columns
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID within the owner's tasks
func (r *GormTaskRepository) FindByID(ctx context.Context, ownerID, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Where("id = ?", id).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves the owner's tasks with filtering and ordering
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(filter.OwnerID))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	sortField := filter.SortField
	if sortField == "" {
		sortField = "created_at"
	}
	query = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortField}, Desc: filter.SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: filter.SortDesc})

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update applies changes and reports how many rows matched
func (r *GormTaskRepository) Update(ctx context.Context, ownerID, id uint64, changes TaskChanges) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Where("id = ?", id).
		Updates(changes.Columns())
	return result.RowsAffected, result.Error
}

// Delete hard deletes a task and reports how many rows matched
func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, id uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Where("id = ?", id).
		Delete(&models.Task{})
	return result.RowsAffected, result.Error
}
