package models

import "time"

// ActivityAction tags an activity record. The set is open: new actions can be
// appended without a schema change.
type ActivityAction string

const (
	ActivityCreated ActivityAction = "created"
	ActivityUpdated ActivityAction = "updated"
	ActivityDeleted ActivityAction = "deleted"
)

// ActivityRecord is an append-only entry describing an action taken against a
// task. TaskID carries no foreign key so the record outlives the task.
type ActivityRecord struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint64         `gorm:"not null" json:"user_id"`
	Action    ActivityAction `gorm:"type:varchar(30);not null" json:"action"`
	TaskID    *uint64        `json:"task_id"`
	Timestamp time.Time      `gorm:"not null" json:"timestamp"`
}

func (ActivityRecord) TableName() string {
	return "task_activity"
}
