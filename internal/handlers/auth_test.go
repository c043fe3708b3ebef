package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

type authTestEnv struct {
	*testEnv
	handler *AuthHandler
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	env := newTestEnv(t, nil)
	return authTestEnv{
		testEnv: env,
		handler: NewAuthHandler(env.authService),
	}
}

func (env authTestEnv) sessionRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/register", env.handler.Register)
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/logout", env.handler.Logout)
	return r
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(env.sessionRouter(), "/api/auth/register", map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "User registered successfully", response.Message)
	assert.Equal(t, "newuser", response.User.Username)
	assert.Equal(t, "newuser@example.com", response.User.Email)
	assert.NotEmpty(t, response.Token)
	assert.NotContains(t, w.Body.String(), "password")

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.sessionRouter()

	w := postJSON(r, "/api/auth/register", map[string]string{"username": "alice", "email": "a@x.com", "password": "pw123456"})
	require.Equal(t, http.StatusCreated, w.Code)

	cases := []struct {
		name    string
		payload map[string]string
		status  int
		code    string
	}{
		{"duplicate username", map[string]string{"username": "alice", "email": "b@x.com", "password": "pw123456"}, http.StatusConflict, "ALREADY_EXISTS"},
		{"duplicate email", map[string]string{"username": "alice2", "email": "a@x.com", "password": "pw123456"}, http.StatusConflict, "ALREADY_EXISTS"},
		{"missing fields", map[string]string{"username": "carol"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"short password", map[string]string{"username": "carol", "email": "c@x.com", "password": "pw"}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(r, "/api/auth/register", tc.payload)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := postJSON(env.sessionRouter(), "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.User.Username)
	require.NotEmpty(t, response.Token)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
}

func TestAuthHandler_Login_FailuresAreUniform(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := env.sessionRouter()

	_, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	wrongPassword := postJSON(r, "/api/auth/login", map[string]string{"username": "existing", "password": "nope-nope"})
	unknownUser := postJSON(r, "/api/auth/login", map[string]string{"username": "ghost", "password": "supersecret"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())

	missing := postJSON(r, "/api/auth/login", map[string]string{"username": "existing"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	result, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "current-user",
		Email:    "current@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	c.Set(constants.ContextKeyUserID, result.User.ID)

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, result.User.Username, response.Username)
}

func TestAuthHandler_SessionCookieAuthenticatesAndLogoutClearsIt(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "browser",
		"email":    "browser@example.com",
		"password": "pw123456",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		me.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"browser"`)

	logout := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range cookies {
		logout.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, logout)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	me = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cleared {
		me.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, me)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
