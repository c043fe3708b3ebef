package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/realtime"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Repositories and services
	tokens := services.NewTokenIssuer(services.TokenConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	})
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens)
	activityLog := services.NewActivityLog(repository.NewActivityRepository(db))
	analyticsService := services.NewAnalyticsService(repository.NewAnalyticsRepository(db), activityLog)
	hub := realtime.NewHub()

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	taskService := services.NewTaskService(repository.NewTaskRepository(db), activityLog, hub, aiService)

	// Sessions and rate limiting use Redis when it is configured
	var redisClient *redis.Client
	var store sessions.Store
	var limiter middleware.RateLimiter
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}

		rs, err := redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret), // authentication key
		)
		if err != nil {
			log.Fatalf("Failed to create Redis store: %v", err)
		}
		store = rs
		limiter = middleware.NewRedisRateLimiter(redisClient, "ratelimit:", cfg.RateLimit, cfg.RateLimitWindow)
	} else {
		log.Println("REDIS_HOST not set; using cookie sessions and in-memory rate limiting")
		store = cookie.NewStore([]byte(cfg.SessionSecret))
		limiter = middleware.NewMemoryRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	}

	// Configure session options based on environment
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: http.SameSiteLaxMode,
	})

	r := handlers.NewRouter(handlers.RouterConfig{
		AuthService:      authService,
		TaskService:      taskService,
		AnalyticsService: analyticsService,
		Hub:              hub,
		SessionStore:     store,
		RateLimiter:      limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Steps run in order: in-flight requests finish before their side
	// effects are drained, and storage closes last.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"task-tracker-api": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				var errs []error

				if err := server.Shutdown(ctx); err != nil {
					errs = append(errs, err)
				}
				taskService.Close()
				hub.Close()
				if err := database.Close(); err != nil {
					errs = append(errs, err)
				}
				if redisClient != nil {
					if err := redisClient.Close(); err != nil {
						errs = append(errs, err)
					}
				}
				return errors.Join(errs...)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
