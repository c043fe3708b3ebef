package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

const dayLayout = "2006-01-02"

// ActivityCount is the number of times an action happened on one day.
type ActivityCount struct {
	Action models.ActivityAction `json:"action"`
	Count  int64                 `json:"count"`
	Date   string                `json:"date"`
}

// ActivityLog records task mutations for analytics. Appends never fail the
// caller: errors are logged and dropped.
type ActivityLog struct {
	repo    repository.ActivityRepository
	now     func() time.Time
	timeout time.Duration
}

// NewActivityLog creates a new ActivityLog.
func NewActivityLog(repo repository.ActivityRepository) *ActivityLog {
	return &ActivityLog{
		repo:    repo,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: 5 * time.Second,
	}
}

// Append writes one activity record.
func (l *ActivityLog) Append(ctx context.Context, ownerID uint64, action models.ActivityAction, taskID *uint64) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	record := &models.ActivityRecord{
		UserID:    ownerID,
		Action:    action,
		TaskID:    taskID,
		Timestamp: l.now(),
	}
	if err := l.repo.Append(ctx, record); err != nil {
		log.Printf("[activity] failed to record %s for user %d: %v", action, ownerID, err)
	}
}

// Query counts the owner's actions per day over the trailing window, which
// starts at midnight UTC days ago. Results are ordered newest day first.
func (l *ActivityLog) Query(ctx context.Context, ownerID uint64, days int) ([]ActivityCount, error) {
	if days < 1 || days > constants.MaxActivityWindowDays {
		return nil, ErrInvalidWindow
	}

	since := startOfDay(l.now()).AddDate(0, 0, -days)
	records, err := l.repo.ListSince(ctx, ownerID, since)
	if err != nil {
		return nil, storageError("failed to query activity", err)
	}

	type bucket struct {
		date   string
		action models.ActivityAction
	}
	counts := make(map[bucket]int64)
	for _, record := range records {
		counts[bucket{record.Timestamp.UTC().Format(dayLayout), record.Action}]++
	}

	result := make([]ActivityCount, 0, len(counts))
	for b, count := range counts {
		result = append(result, ActivityCount{Action: b.action, Count: count, Date: b.date})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].Action < result[j].Action
	})

	return result, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
