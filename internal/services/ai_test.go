package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

func newFakeOpenAI(t *testing.T, content string) *AIService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  openai.GPT4o,
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": content},
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestAIService_GenerateTasksFromText(t *testing.T) {
	ai := newFakeOpenAI(t, "```json\n[{\"title\":\"Buy milk\",\"description\":\"2 litres\",\"priority\":\"high\",\"due_date\":\"2026-10-18T09:00:00Z\"},{\"title\":\"Call mom\",\"description\":\"\",\"priority\":\"low\",\"due_date\":null}]\n```")

	tasks, err := ai.GenerateTasksFromText(context.Background(), "buy milk tomorrow and call mom")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, tasks[0].DueDate.Equal(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))
	assert.Nil(t, tasks[1].DueDate)
}

func TestAIService_RejectsNonJSON(t *testing.T) {
	ai := newFakeOpenAI(t, "Sorry, I cannot help with that.")

	_, err := ai.GenerateTasksFromText(context.Background(), "anything")
	assert.ErrorContains(t, err, "failed to parse AI response")
}

func TestTaskService_SuggestTasksSanitizesDrafts(t *testing.T) {
	ai := newFakeOpenAI(t, `[
		{"title":"Ship release","priority":"urgent","due_date":"2026-10-20T00:00:00Z"},
		{"title":"  ","priority":"low"},
		{"title":"Old deadline","priority":"low","due_date":"2020-01-01T00:00:00Z"}
	]`)
	service := NewTaskService(nil, nil, nil, ai)
	service.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }

	drafts, err := service.SuggestTasks(context.Background(), "ship the release")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "Ship release", drafts[0].Title)
	assert.Equal(t, models.TaskPriorityMedium, drafts[0].Priority)
	assert.NotNil(t, drafts[0].DueDate)
	assert.Equal(t, "Old deadline", drafts[1].Title)
	assert.Nil(t, drafts[1].DueDate)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("```\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("  []  "))
}
