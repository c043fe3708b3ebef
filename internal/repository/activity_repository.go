package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Append(ctx context.Context, record *models.ActivityRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *GormActivityRepository) ListSince(ctx context.Context, ownerID uint64, since time.Time) ([]models.ActivityRecord, error) {
	records := []models.ActivityRecord{}
	err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Where("timestamp >= ?", since).
		Order("timestamp DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
