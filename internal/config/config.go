package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envConfig holds all environment-driven settings. Loaded once at startup via
// LoadEnvConfig and read through the DefaultEnvConfig global.
type envConfig struct {
	APP_PORT      string
	LOG_FILE_PATH string
	LOG_LEVEL     string

	DB_HOST              string
	DB_PORT              string
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	// External todo API (sync remote).
	REMOTE_API_BASE_URL    string
	REMOTE_API_TIMEOUT     time.Duration
	REMOTE_API_RETRY_COUNT int
	REMOTE_API_RETRY_DELAY time.Duration

	// Bulk completion job pipeline.
	JOB_WORKER_COUNT int
	JOB_QUEUE_SIZE   int

	// Excel export layout (optional YAML file).
	EXPORT_CONFIG_PATH string
}

var DefaultEnvConfig envConfig

// LoadEnvConfig reads .env (if present) and populates DefaultEnvConfig.
// Missing optional values fall back to defaults; required values error out.
func LoadEnvConfig() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	DefaultEnvConfig = envConfig{
		APP_PORT:      getEnv("APP_PORT", "8080"),
		LOG_FILE_PATH: getEnv("LOG_FILE_PATH", ""),
		LOG_LEVEL:     getEnv("LOG_LEVEL", "info"),

		DB_HOST:              getEnv("DB_HOST", "localhost"),
		DB_PORT:              getEnv("DB_PORT", "5432"),
		DB_USER:              getEnv("DB_USER", "postgres"),
		DB_PASSWORD:          getEnv("DB_PASSWORD", ""),
		DB_NAME:              getEnv("DB_NAME", "todos"),
		DB_SSL_MODE:          getEnv("DB_SSL_MODE", "disable"),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		REMOTE_API_BASE_URL:    getEnv("REMOTE_API_BASE_URL", ""),
		REMOTE_API_TIMEOUT:     getEnvDuration("REMOTE_API_TIMEOUT", 30*time.Second),
		REMOTE_API_RETRY_COUNT: getEnvInt("REMOTE_API_RETRY_COUNT", 3),
		REMOTE_API_RETRY_DELAY: getEnvDuration("REMOTE_API_RETRY_DELAY", 500*time.Millisecond),

		JOB_WORKER_COUNT: getEnvInt("JOB_WORKER_COUNT", 4),
		JOB_QUEUE_SIZE:   getEnvInt("JOB_QUEUE_SIZE", 64),

		EXPORT_CONFIG_PATH: getEnv("EXPORT_CONFIG_PATH", ""),
	}

	if DefaultEnvConfig.REMOTE_API_BASE_URL == "" {
		return fmt.Errorf("REMOTE_API_BASE_URL is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
