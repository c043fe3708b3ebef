package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Fallback secrets used when none are configured. They are only acceptable
// outside release mode.
const (
	DefaultJWTSecret     = "default-jwt-secret-change-me"
	DefaultSessionSecret = "default-secret-key-change-me"
)

// ErrDefaultSecret is returned by Validate in release mode while a fallback
// secret is still configured.
var ErrDefaultSecret = errors.New("JWT_SECRET and SESSION_SECRET must be set in release mode")

type Config struct {
	Port            string
	GinMode         string
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPath          string
	DBLogLevel      string
	JWTSecret       string
	JWTIssuer       string
	TokenTTL        time.Duration
	SessionSecret   string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RateLimit       int
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration
	OpenAIAPIKey    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		DBDriver:        getEnv("DB_DRIVER", "sqlite"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBUser:          getEnv("DB_USER", "taskuser"),
		DBPassword:      getEnv("DB_PASSWORD", "taskpassword"),
		DBName:          getEnv("DB_NAME", "task_tracker"),
		DBPath:          getEnv("DB_PATH", "tasks.db"),
		DBLogLevel:      getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:       getEnv("JWT_ISSUER", "task-tracker-api"),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 24*time.Hour),
		SessionSecret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
		RedisHost:       getEnv("REDIS_HOST", ""),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RateLimit:       getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
	}
}

// Validate rejects the fallback secrets in release mode. In any other mode
// it only logs a warning.
func (c *Config) Validate() error {
	if c.JWTSecret != DefaultJWTSecret && c.SessionSecret != DefaultSessionSecret {
		return nil
	}
	if c.GinMode == "release" {
		return ErrDefaultSecret
	}
	log.Println("Warning: using a default JWT_SECRET or SESSION_SECRET, tokens and sessions can be forged")
	return nil
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
