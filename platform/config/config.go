// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for the admin dashboard API.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetReminderScanInterval() time.Duration
	GetReminderScanBatchSize() int
}

// WhatsAppConfig provides settings for the messaging provider client.
type WhatsAppConfig interface {
	GetWhatsAppAPIBaseURL() string
	GetWhatsAppSendTimeout() time.Duration
	GetWhatsAppDefaultLanguage() string
}

// CronConfig provides settings for the external cron entry point.
type CronConfig interface {
	GetCronAuthToken() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	ReminderScanInterval    time.Duration
	ReminderScanBatchSize   int
	WhatsAppAPIBaseURL      string
	WhatsAppSendTimeout     time.Duration
	WhatsAppDefaultLanguage string
	CronAuthToken           string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool                { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string                { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                 { return c.AsynqConcurrency }
func (c *Config) GetReminderScanInterval() time.Duration   { return c.ReminderScanInterval }
func (c *Config) GetReminderScanBatchSize() int            { return c.ReminderScanBatchSize }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppAPIBaseURL() string            { return c.WhatsAppAPIBaseURL }
func (c *Config) GetWhatsAppSendTimeout() time.Duration    { return c.WhatsAppSendTimeout }
func (c *Config) GetWhatsAppDefaultLanguage() string       { return c.WhatsAppDefaultLanguage }

// CronConfig implementation
func (c *Config) GetCronAuthToken() string { return c.CronAuthToken }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment, optionally seeded from a
// .env file in development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		JWTAccessSecret:         os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:            getBool("CORS_ALLOW_ALL", false),
		CORSOrigins:             getList("CORS_ORIGINS"),
		CORSAllowCreds:          getBool("CORS_ALLOW_CREDENTIALS", true),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTLSInsecure:        getBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        getInt("ASYNQ_CONCURRENCY", 10),
		ReminderScanInterval:    getDuration("REMINDER_SCAN_INTERVAL", 5*time.Minute),
		ReminderScanBatchSize:   getInt("REMINDER_SCAN_BATCH_SIZE", 200),
		WhatsAppAPIBaseURL:      getEnv("WHATSAPP_API_BASE_URL", "https://api.whatsapp-provider.example"),
		WhatsAppSendTimeout:     getDuration("WHATSAPP_SEND_TIMEOUT", 15*time.Second),
		WhatsAppDefaultLanguage: getEnv("WHATSAPP_DEFAULT_LANGUAGE", "en"),
		CronAuthToken:           os.Getenv("CRON_AUTH_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" && !strings.EqualFold(cfg.Env, "development") {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required outside development")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
