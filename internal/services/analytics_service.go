package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

// PriorityCount is the number of tasks with one priority.
type PriorityCount struct {
	Priority models.TaskPriority `json:"priority"`
	Count    int64               `json:"count"`
}

// DailyCount is the number of tasks created on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TaskStats summarises an owner's tasks.
type TaskStats struct {
	Total         int64           `json:"total"`
	Pending       int64           `json:"pending"`
	InProgress    int64           `json:"in_progress"`
	Completed     int64           `json:"completed"`
	ByPriority    []PriorityCount `json:"by_priority"`
	DailyCreation []DailyCount    `json:"daily_creation"`
}

// ProductivityMetrics describes how an owner is getting through their tasks.
type ProductivityMetrics struct {
	CompletedTasks        int64   `json:"completed_tasks"`
	TotalTasks            int64   `json:"total_tasks"`
	CompletionRate        float64 `json:"completion_rate"`
	AvgCompletionTimeDays float64 `json:"avg_completion_time_days"`
	OverdueTasks          int64   `json:"overdue_tasks"`
}

// AnalyticsService computes read-only statistics over tasks and activity.
type AnalyticsService struct {
	repo     repository.AnalyticsRepository
	activity *ActivityLog
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo repository.AnalyticsRepository, activity *ActivityLog) *AnalyticsService {
	return &AnalyticsService{
		repo:     repo,
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TaskStats returns totals per status and priority plus daily creation counts
// for the trailing 30 days, oldest day first.
func (s *AnalyticsService) TaskStats(ctx context.Context, ownerID uint64) (*TaskStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, storageError("failed to count tasks by status", err)
	}
	byPriority, err := s.repo.CountByPriority(ctx, ownerID)
	if err != nil {
		return nil, storageError("failed to count tasks by priority", err)
	}

	since := startOfDay(s.now()).AddDate(0, 0, -constants.DailyCreationWindowDays)
	createdAt, err := s.repo.CreatedSince(ctx, ownerID, since)
	if err != nil {
		return nil, storageError("failed to load task creation times", err)
	}

	stats := &TaskStats{
		Pending:       byStatus[models.TaskStatusPending],
		InProgress:    byStatus[models.TaskStatusInProgress],
		Completed:     byStatus[models.TaskStatusCompleted],
		ByPriority:    make([]PriorityCount, 0, len(models.TaskPriorities)),
		DailyCreation: dailyCounts(createdAt),
	}
	for _, count := range byStatus {
		stats.Total += count
	}
	for _, priority := range models.TaskPriorities {
		stats.ByPriority = append(stats.ByPriority, PriorityCount{Priority: priority, Count: byPriority[priority]})
	}

	return stats, nil
}

// Activity returns action counts per day over the trailing window.
func (s *AnalyticsService) Activity(ctx context.Context, ownerID uint64, days int) ([]ActivityCount, error) {
	return s.activity.Query(ctx, ownerID, days)
}

// Productivity returns completion rate, mean completion latency in days and
// the number of overdue tasks.
func (s *AnalyticsService) Productivity(ctx context.Context, ownerID uint64) (*ProductivityMetrics, error) {
	byStatus, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, storageError("failed to count tasks by status", err)
	}
	durations, err := s.repo.CompletedDurations(ctx, ownerID)
	if err != nil {
		return nil, storageError("failed to load completed tasks", err)
	}
	overdue, err := s.repo.CountOverdue(ctx, ownerID, s.now())
	if err != nil {
		return nil, storageError("failed to count overdue tasks", err)
	}

	metrics := &ProductivityMetrics{
		CompletedTasks: byStatus[models.TaskStatusCompleted],
		OverdueTasks:   overdue,
	}
	for _, count := range byStatus {
		metrics.TotalTasks += count
	}
	if metrics.TotalTasks > 0 {
		metrics.CompletionRate = roundTo(float64(metrics.CompletedTasks)*100/float64(metrics.TotalTasks), 2)
	}
	if len(durations) > 0 {
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		metrics.AvgCompletionTimeDays = (sum / time.Duration(len(durations))).Hours() / 24
	}

	return metrics, nil
}

func dailyCounts(times []time.Time) []DailyCount {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[t.UTC().Format(dayLayout)]++
	}

	result := make([]DailyCount, 0, len(counts))
	for date, count := range counts {
		result = append(result, DailyCount{Date: date, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
