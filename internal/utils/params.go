package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidDate = errors.New("due_date must be RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD")
	ErrInvalidDays = errors.New("days must be an integer")
)

// dueDateLayouts are tried in order. Layouts without a zone are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses the due date formats accepted by the API and returns the
// instant in UTC.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// GetDaysParam reads the "days" query parameter, falling back to def when it
// is absent. Range checks are left to the caller.
func GetDaysParam(c *gin.Context, def int) (int, error) {
	raw, ok := c.GetQuery("days")
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidDays
	}
	return days, nil
}
