package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// OutputDir is the parent directory downloads are saved under.
	// Empty means the operator's ~/Downloads folder.
	OutputDir string
	// HTTPTimeoutSeconds bounds each individual request.
	HTTPTimeoutSeconds int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

const defaultHTTPTimeoutSeconds = 3600

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		OutputDir:          getEnv("OUTPUT_DIR", ""),
		HTTPTimeoutSeconds: getEnvInt("HTTP_TIMEOUT", defaultHTTPTimeoutSeconds),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid value", "key", key, "value", value)
		return defaultValue
	}
	return n
}
