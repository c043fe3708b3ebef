package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/realtime"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// RouterConfig holds everything the HTTP surface depends on. RateLimiter may
// be nil to disable rate limiting.
type RouterConfig struct {
	AuthService      *services.AuthService
	TaskService      *services.TaskService
	AnalyticsService *services.AnalyticsService
	Hub              *realtime.Hub
	SessionStore     sessions.Store
	RateLimiter      middleware.RateLimiter
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))

	authHandler := NewAuthHandler(cfg.AuthService)
	taskHandler := NewTaskHandler(cfg.TaskService)
	analyticsHandler := NewAnalyticsHandler(cfg.AnalyticsService)
	realtimeHandler := NewRealtimeHandler(cfg.Hub, cfg.AuthService)
	requireAuth := middleware.RequireAuth(cfg.AuthService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	r.GET("/ws", realtimeHandler.Connect)

	// API routes
	api := r.Group("/api")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", middleware.RequireTaskID(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.PATCH("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
		}

		// Analytics routes (protected)
		analytics := api.Group("/analytics")
		analytics.Use(requireAuth)
		{
			analytics.GET("/tasks/stats", analyticsHandler.TaskStats)
			analytics.GET("/activity", analyticsHandler.Activity)
			analytics.GET("/productivity", analyticsHandler.Productivity)
		}
	}

	return r
}
