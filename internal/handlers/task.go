package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks
// Supports status/priority filters and sort/order
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		OwnerID:   userID,
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		SortField: c.Query("sort"),
		SortOrder: c.Query("order"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := utils.ParseDueDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequestWithDetails(c, err.Error(), gin.H{"field": "due_date"})
			return
		}
		dueDate = &parsed
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     dueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Only the fields present in the body
// are changed; "due_date": null clears the due date.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]json.RawMessage
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, invalid := parseTaskUpdate(rawReq)
	if invalid != nil {
		apierrors.BadRequestWithDetails(c, invalid.Message, gin.H{"field": invalid.Field})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, taskID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskMutationResponse{
		Message: "Task updated successfully",
		Task:    dto.ToTaskDTO(*task),
	})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// SuggestTasks drafts tasks from free text using AI. Nothing is saved.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestTasksRequest struct {
		Text string `json:"text"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

func taskParams(c *gin.Context) (uint64, uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return 0, 0, false
	}
	taskID, exists := middleware.GetTaskID(c)
	if !exists {
		apierrors.NotFound(c, "Task not found")
		return 0, 0, false
	}
	return userID, taskID, true
}

// fieldError names the request field that could not be decoded.
type fieldError struct {
	Field   string
	Message string
}

func parseTaskUpdate(raw map[string]json.RawMessage) (services.UpdateTaskInput, *fieldError) {
	var input services.UpdateTaskInput

	if value, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(value, &title); err != nil {
			return input, &fieldError{Field: "title", Message: "title must be a string"}
		}
		input.Title = &title
	}
	if value, ok := raw["description"]; ok {
		var description *string
		if err := json.Unmarshal(value, &description); err != nil {
			return input, &fieldError{Field: "description", Message: "description must be a string"}
		}
		if description == nil {
			empty := ""
			description = &empty
		}
		input.Description = description
	}
	if value, ok := raw["status"]; ok {
		var status string
		if err := json.Unmarshal(value, &status); err != nil {
			return input, &fieldError{Field: "status", Message: "status must be a string"}
		}
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if value, ok := raw["priority"]; ok {
		var priority string
		if err := json.Unmarshal(value, &priority); err != nil {
			return input, &fieldError{Field: "priority", Message: "priority must be a string"}
		}
		p := models.TaskPriority(priority)
		input.Priority = &p
	}
	if value, ok := raw["due_date"]; ok {
		var dueDate *string
		if err := json.Unmarshal(value, &dueDate); err != nil {
			return input, &fieldError{Field: "due_date", Message: "due_date must be a string or null"}
		}
		if dueDate == nil || *dueDate == "" {
			input.ClearDueDate = true
		} else {
			parsed, err := utils.ParseDueDate(*dueDate)
			if err != nil {
				return input, &fieldError{Field: "due_date", Message: err.Error()}
			}
			input.DueDate = &parsed
		}
	}

	return input, nil
}
