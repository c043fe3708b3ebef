package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/realtime"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/testutil"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db               *gorm.DB
	authService      *services.AuthService
	taskService      *services.TaskService
	analyticsService *services.AnalyticsService
	hub              *realtime.Hub
	router           *gin.Engine
}

func newTestEnv(t *testing.T, limiter middleware.RateLimiter) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	tokens := services.NewTokenIssuer(services.TokenConfig{
		Secret: "test-secret",
		Issuer: "task-tracker-api",
		TTL:    time.Hour,
	})
	activity := services.NewActivityLog(repository.NewActivityRepository(db))
	hub := realtime.NewHub()

	env := &testEnv{
		db:               db,
		authService:      services.NewAuthService(repository.NewUserRepository(db), tokens),
		taskService:      services.NewTaskService(repository.NewTaskRepository(db), activity, hub, nil),
		analyticsService: services.NewAnalyticsService(repository.NewAnalyticsRepository(db), activity),
		hub:              hub,
	}
	env.router = NewRouter(RouterConfig{
		AuthService:      env.authService,
		TaskService:      env.taskService,
		AnalyticsService: env.analyticsService,
		Hub:              hub,
		SessionStore:     cookie.NewStore([]byte("secret")),
		RateLimiter:      limiter,
	})

	t.Cleanup(func() {
		env.taskService.Close()
		hub.Close()
	})
	return env
}

// do sends a JSON request through the router. token may be empty.
func (env *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "192.0.2.10:5555"

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) register(t *testing.T, username string) string {
	t.Helper()

	w := env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw123456",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
