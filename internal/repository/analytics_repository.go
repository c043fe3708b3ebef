package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository is a GORM implementation of AnalyticsRepository.
// Date bucketing happens in the service layer so the queries stay portable
// across MySQL, Postgres and SQLite.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

type groupCount struct {
	GroupKey string
	Count    int64
}

func (r *GormAnalyticsRepository) countGroupedBy(ctx context.Context, ownerID uint64, column string) ([]groupCount, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Select(column + " AS group_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func (r *GormAnalyticsRepository) CountByStatus(ctx context.Context, ownerID uint64) (map[models.TaskStatus]int64, error) {
	rows, err := r.countGroupedBy(ctx, ownerID, "status")
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.TaskStatus(row.GroupKey)] = row.Count
	}
	return counts, nil
}

func (r *GormAnalyticsRepository) CountByPriority(ctx context.Context, ownerID uint64) (map[models.TaskPriority]int64, error) {
	rows, err := r.countGroupedBy(ctx, ownerID, "priority")
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskPriority]int64, len(rows))
	for _, row := range rows {
		counts[models.TaskPriority(row.GroupKey)] = row.Count
	}
	return counts, nil
}

func (r *GormAnalyticsRepository) CreatedSince(ctx context.Context, ownerID uint64, since time.Time) ([]time.Time, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Select("created_at").
		Scopes(database.OwnedBy(ownerID)).
		Where("created_at >= ?", since).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(tasks))
	for i, task := range tasks {
		times[i] = task.CreatedAt
	}
	return times, nil
}

func (r *GormAnalyticsRepository) CompletedDurations(ctx context.Context, ownerID uint64) ([]time.Duration, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Select("created_at", "updated_at").
		Scopes(database.OwnedBy(ownerID)).
		Where("status = ?", models.TaskStatusCompleted).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	durations := make([]time.Duration, len(tasks))
	for i, task := range tasks {
		durations[i] = task.UpdatedAt.Sub(task.CreatedAt)
	}
	return durations, nil
}

func (r *GormAnalyticsRepository) CountOverdue(ctx context.Context, ownerID uint64, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("status <> ?", models.TaskStatusCompleted).
		Count(&count).Error
	return count, err
}
