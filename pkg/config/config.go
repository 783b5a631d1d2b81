// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/edgechat/edgechat/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	AppName string

	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	AI        AIConfig

	LogLevel observability.LogLevel
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	OpsAddr         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds token signing configuration. The secret is loaded once at
// startup and never mutated.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RateLimitConfig holds the fixed-window limiter settings
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// StorageConfig holds external store connection settings
type StorageConfig struct {
	PostgresURL     string
	PostgresTimeout time.Duration
	RedisURL        string
}

// AIConfig holds completion provider settings
type AIConfig struct {
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// Missing .env is fine; anything else is worth surfacing.
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		AppName: getEnv("EDGECHAT_APP_NAME", "EdgeChat Backend"),
		Server: ServerConfig{
			Addr:            getEnv("EDGECHAT_ADDR", ":8080"),
			OpsAddr:         getEnv("EDGECHAT_OPS_ADDR", ":9090"),
			ReadTimeout:     getEnvDuration("EDGECHAT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("EDGECHAT_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("EDGECHAT_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("EDGECHAT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("EDGECHAT_JWT_SECRET", ""),
			AccessTTL:  getEnvDuration("EDGECHAT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: getEnvDuration("EDGECHAT_REFRESH_TTL", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("EDGECHAT_RATE_LIMIT", 10),
			Window:   getEnvDuration("EDGECHAT_RATE_WINDOW", time.Minute),
		},
		Storage: StorageConfig{
			PostgresURL:     getEnv("EDGECHAT_POSTGRES_URL", ""),
			PostgresTimeout: getEnvDuration("EDGECHAT_POSTGRES_TIMEOUT", 5*time.Second),
			RedisURL:        getEnv("EDGECHAT_REDIS_URL", "redis://localhost:6379"),
		},
		AI: AIConfig{
			GeminiAPIKey: getEnv("EDGECHAT_GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("EDGECHAT_GEMINI_MODEL", "gemini-2.5-flash"),
		},
		LogLevel: observability.ParseLogLevel(getEnv("EDGECHAT_LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required settings are present and sane
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("EDGECHAT_JWT_SECRET is required")
	}
	if c.Storage.PostgresURL == "" {
		return fmt.Errorf("EDGECHAT_POSTGRES_URL is required")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.Auth.RefreshTTL <= c.Auth.AccessTTL {
		return fmt.Errorf("refresh TTL must exceed access TTL")
	}
	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate limit ceiling must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	return nil
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
