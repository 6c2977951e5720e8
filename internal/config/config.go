package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/day-planner/internal/persistence"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort       string
	FrontendURL      string
	EnableHSTS       bool
	StorageBackend   string
	BoltPath         string
	SQLitePath       string
	RedisURL         string
	DatabaseURL      string
	Timezone         string
	RateLimit        string
	PersistTimeout   time.Duration
	BackupDir        string
	BackupSchedule   string
	BackupRetention  int
	// RabbitMQURL hands scheduled backups to the worker process when set
	RabbitMQURL      string
	RabbitMQPrefetch int
	ServerDebugMode  bool
	WorkerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string

	location *time.Location
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", persistence.BackendBolt)),
		BoltPath:         getEnv("BOLT_PATH", "./data/planner.db"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/planner.sqlite"),
		RedisURL:         getEnv("REDIS_URL", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Timezone:         getEnv("PLANNER_TIMEZONE", "Local"),
		RateLimit:        getEnv("RATE_LIMIT", "20-S"),
		PersistTimeout:   getEnvDuration("PERSIST_TIMEOUT", 5*time.Second),
		BackupDir:        getEnv("BACKUP_DIR", "./data/backups"),
		BackupSchedule:   getEnvOptional("BACKUP_SCHEDULE", "@daily"),
		BackupRetention:  getEnvInt("BACKUP_RETENTION", 7),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid PLANNER_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	switch cfg.StorageBackend {
	case persistence.BackendMemory, persistence.BackendBolt, persistence.BackendSQLite:
	case persistence.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case persistence.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (must be memory, bolt, sqlite, redis or postgres)", cfg.StorageBackend)
	}

	if cfg.PersistTimeout <= 0 {
		return nil, fmt.Errorf("PERSIST_TIMEOUT must be positive")
	}
	if cfg.BackupRetention < 0 {
		return nil, fmt.Errorf("BACKUP_RETENTION must not be negative")
	}
	if cfg.RabbitMQPrefetch < 1 {
		return nil, fmt.Errorf("RABBITMQ_PREFETCH must be at least 1")
	}

	return cfg, nil
}

// Location returns the time zone tasks' calendar dates are evaluated in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// StorageOptions returns the persistence settings for the configured backend
func (c *Config) StorageOptions() persistence.Options {
	return persistence.Options{
		Backend:     c.StorageBackend,
		BoltPath:    c.BoltPath,
		SQLitePath:  c.SQLitePath,
		RedisURL:    c.RedisURL,
		DatabaseURL: c.DatabaseURL,
	}
}

// BackupsEnabled reports whether the backup scheduler should run
func (c *Config) BackupsEnabled() bool {
	return c.BackupSchedule != "" && c.BackupDir != ""
}

// BackupQueueEnabled reports whether scheduled backups go through RabbitMQ
func (c *Config) BackupQueueEnabled() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOptional is getEnv where an explicitly empty value, "off" or "none" disables the feature.
func getEnvOptional(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "off", "none", "disabled":
		return ""
	}
	return strings.TrimSpace(value)
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("500ms", "2m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
