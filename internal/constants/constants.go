package constants

// Context and session keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyTaskID   = "task_id"

	SessionCookieName = "task_session"
	SessionKeyToken   = "token"
)

// Credential limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

// Analytics windows, in days
const (
	DefaultActivityWindowDays = 7
	MaxActivityWindowDays     = 365
	DailyCreationWindowDays   = 30
)

// MaxAIGeneratedTasks caps the number of drafts returned by task suggestions.
const MaxAIGeneratedTasks = 20

// Task list sorting
const (
	DefaultSortField = "created_at"
	DefaultSortOrder = "desc"
)

// SortableTaskFields is the allow-list of columns tasks may be ordered by.
var SortableTaskFields = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"due_date":   {},
	"priority":   {},
	"status":     {},
	"title":      {},
}
