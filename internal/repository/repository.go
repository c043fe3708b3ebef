package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// TaskRepository defines the interface for task data access. Every method is
// scoped to an owning user.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID within the owner's tasks
	FindByID(ctx context.Context, ownerID, id uint64) (*models.Task, error)

	// List retrieves the owner's tasks with filtering and ordering
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update applies changes and reports how many rows matched
	Update(ctx context.Context, ownerID, id uint64, changes TaskChanges) (int64, error)

	// Delete hard deletes a task and reports how many rows matched
	Delete(ctx context.Context, ownerID, id uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID   uint64
	Status    *models.TaskStatus
	Priority  *models.TaskPriority
	SortField string
	SortDesc  bool
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether either identity is taken
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// ActivityRepository is the append-only store behind the activity log.
type ActivityRepository interface {
	// Append inserts one record
	Append(ctx context.Context, record *models.ActivityRecord) error

	// ListSince returns the owner's records at or after since, newest first
	ListSince(ctx context.Context, ownerID uint64, since time.Time) ([]models.ActivityRecord, error)
}

// AnalyticsRepository exposes the read-only task aggregates.
type AnalyticsRepository interface {
	// CountByStatus returns the owner's task counts keyed by status
	CountByStatus(ctx context.Context, ownerID uint64) (map[models.TaskStatus]int64, error)

	// CountByPriority returns the owner's task counts keyed by priority
	CountByPriority(ctx context.Context, ownerID uint64) (map[models.TaskPriority]int64, error)

	// CreatedSince returns creation timestamps of tasks created at or after since
	CreatedSince(ctx context.Context, ownerID uint64, since time.Time) ([]time.Time, error)

	// CompletedDurations returns updated_at - created_at for every completed task
	CompletedDurations(ctx context.Context, ownerID uint64) ([]time.Duration, error)

	// CountOverdue counts unfinished tasks whose due date is before now
	CountOverdue(ctx context.Context, ownerID uint64, now time.Time) (int64, error)
}
