package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// Real-time event names pushed after task mutations.
const (
	EventTaskCreated = "taskCreated"
	EventTaskUpdated = "taskUpdated"
	EventTaskDeleted = "taskDeleted"
)

// ActivityRecorder appends activity records without reporting failures.
type ActivityRecorder interface {
	Append(ctx context.Context, ownerID uint64, action models.ActivityAction, taskID *uint64)
}

// Notifier delivers a named event to every live connection of a user and
// returns how many connections it was queued for.
type Notifier interface {
	Push(userID uint64, event string, payload interface{}) int
}

// TaskEvent is the payload of task notifications.
type TaskEvent struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	activity  ActivityRecorder
	notifier  Notifier
	aiService *AIService
	now       func() time.Time

	// side effects run one at a time, in mutation order
	queue      chan sideEffect
	start      sync.Once
	mu         sync.Mutex
	closed     bool
	pending    sync.WaitGroup
	dispatcher sync.WaitGroup
}

type sideEffect struct {
	ctx     context.Context
	ownerID uint64
	action  models.ActivityAction
	taskID  uint64
	event   string
	payload TaskEvent
}

const sideEffectQueueSize = 256

// NewTaskService creates a new TaskService. notifier and aiService may be nil.
func NewTaskService(taskRepo repository.TaskRepository, activity ActivityRecorder, notifier Notifier, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		activity:  activity,
		notifier:  notifier,
		aiService: aiService,
		now:       func() time.Time { return time.Now().UTC() },
		queue:     make(chan sideEffect, sideEffectQueueSize),
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     uint64
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// ListTasksInput represents filters for listing tasks. Empty strings mean
// "no filter" or the default ordering.
type ListTasksInput struct {
	OwnerID   uint64
	Status    string
	Priority  string
	SortField string
	SortOrder string
}

// UpdateTaskInput represents input for updating a task. Only non-nil fields
// are applied.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// CreateTask creates a new pending task for the owner
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	now := s.now()
	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		UserID:      input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, storageError("failed to create task", err)
	}

	s.afterMutation(ctx, task.UserID, models.ActivityCreated, task.ID, EventTaskCreated, TaskEvent{
		ID:      task.ID,
		Title:   task.Title,
		Message: fmt.Sprintf("Task %q created successfully", task.Title),
	})

	return task, nil
}

// GetTask returns one of the owner's tasks
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storageError("failed to find task", err)
	}

	return task, nil
}

// ListTasks returns the owner's tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, error) {
	filter := repository.TaskFilter{OwnerID: input.OwnerID}

	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
		filter.Priority = &priority
	}

	filter.SortField = constants.DefaultSortField
	if input.SortField != "" {
		if _, ok := constants.SortableTaskFields[input.SortField]; !ok {
			return nil, ErrInvalidSortField
		}
		filter.SortField = input.SortField
	}

	order := strings.ToLower(input.SortOrder)
	if order == "" {
		order = constants.DefaultSortOrder
	}
	switch order {
	case "asc":
		filter.SortDesc = false
	case "desc":
		filter.SortDesc = true
	default:
		return nil, ErrInvalidSortOrder
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError("failed to list tasks", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update to one of the owner's tasks
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	changes := repository.TaskChanges{
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		ClearDueDate: input.ClearDueDate,
	}
	if changes.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		changes.Title = &title
	}
	if changes.Status != nil && !changes.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if changes.Priority != nil && !changes.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	changes.UpdatedAt = s.now()

	rows, err := s.taskRepo.Update(ctx, ownerID, taskID, changes)
	if err != nil {
		return nil, storageError("failed to update task", err)
	}
	if rows == 0 {
		return nil, ErrTaskNotFound
	}

	task, err := s.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, ownerID, models.ActivityUpdated, taskID, EventTaskUpdated, TaskEvent{
		ID:      taskID,
		Message: "Task updated successfully",
	})

	return task, nil
}

// DeleteTask hard deletes one of the owner's tasks
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID uint64) error {
	rows, err := s.taskRepo.Delete(ctx, ownerID, taskID)
	if err != nil {
		return storageError("failed to delete task", err)
	}
	if rows == 0 {
		return ErrTaskNotFound
	}

	s.afterMutation(ctx, ownerID, models.ActivityDeleted, taskID, EventTaskDeleted, TaskEvent{
		ID:      taskID,
		Message: "Task deleted successfully",
	})

	return nil
}

// SuggestTasks drafts tasks from free text. Nothing is persisted.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestTextRequired
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		if !draft.Priority.Valid() {
			draft.Priority = models.TaskPriorityMedium
		}
		if draft.DueDate != nil && draft.DueDate.Before(cutoff) {
			draft.DueDate = nil
		}
		valid = append(valid, draft)
	}

	return valid, nil
}

// Wait blocks until every queued side effect has finished. The dispatcher
// keeps running, so mutations may continue afterwards.
func (s *TaskService) Wait() {
	s.pending.Wait()
}

// Close drains the queued side effects and stops the dispatcher. Mutations
// after Close still succeed but record no activity and push nothing.
func (s *TaskService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.dispatcher.Wait()
	s.pending.Wait()
}

// afterMutation queues the activity append and the owner notification.
// The request never waits for them and neither step can fail it.
func (s *TaskService) afterMutation(ctx context.Context, ownerID uint64, action models.ActivityAction, taskID uint64, event string, payload TaskEvent) {
	if s.activity == nil && s.notifier == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Printf("[tasks] dropping %s side effect for task %d: service closed", action, taskID)
		return
	}
	s.start.Do(func() {
		s.dispatcher.Add(1)
		go s.dispatch()
	})
	s.pending.Add(1)
	s.queue <- sideEffect{
		ctx:     context.WithoutCancel(ctx),
		ownerID: ownerID,
		action:  action,
		taskID:  taskID,
		event:   event,
		payload: payload,
	}
}

func (s *TaskService) dispatch() {
	defer s.dispatcher.Done()
	for effect := range s.queue {
		s.run(effect)
	}
}

func (s *TaskService) run(effect sideEffect) {
	defer s.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[tasks] side effect for task %d panicked: %v", effect.taskID, r)
		}
	}()

	if s.activity != nil {
		s.activity.Append(effect.ctx, effect.ownerID, effect.action, &effect.taskID)
	}
	if s.notifier != nil {
		s.notifier.Push(effect.ownerID, effect.event, effect.payload)
	}
}
