package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Task indexes for owner scoping, filtering and sorting
		{&models.Task{}, "tasks", "idx_tasks_user_id", "user_id"},
		{&models.Task{}, "tasks", "idx_tasks_status", "status"},
		{&models.Task{}, "tasks", "idx_tasks_priority", "priority"},
		{&models.Task{}, "tasks", "idx_tasks_due_date", "due_date"},
		{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},

		// Activity window queries
		{&models.ActivityRecord{}, "task_activity", "idx_task_activity_user_time", "user_id, timestamp"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Printf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
