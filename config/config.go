package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Environment       string
	ServerPort        string
	APIBaseURL        string
	SessionDBType     string
	SessionDBURL      string
	RequestTimeout    time.Duration
	CaptureResetDelay time.Duration
	CameraSnapshotURL string
	CameraImagePath   string
	ExportDir         string
	LogLevel          string
	AllowedOrigins    []string
}

func Load() (*Config, error) {
	requestTimeout, err := getDuration("REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	resetDelay, err := getDuration("CAPTURE_RESET_DELAY", 1500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	dbType := strings.ToLower(getEnv("SESSION_DB_TYPE", "sqlite"))
	if dbType != "sqlite" && dbType != "postgres" {
		return nil, fmt.Errorf("SESSION_DB_TYPE must be sqlite or postgres, got %q", dbType)
	}

	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		ServerPort:        getEnv("PORT", "8080"),
		APIBaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:8001"), "/"),
		SessionDBType:     dbType,
		SessionDBURL:      getEnv("SESSION_DB_URL", "file:attendly_session.db"),
		RequestTimeout:    requestTimeout,
		CaptureResetDelay: resetDelay,
		CameraSnapshotURL: getEnv("CAMERA_SNAPSHOT_URL", ""),
		CameraImagePath:   getEnv("CAMERA_IMAGE_PATH", ""),
		ExportDir:         getEnv("EXPORT_DIR", "exports"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "")),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 1500ms): %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
