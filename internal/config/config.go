package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	GristAPIKey  string
	GristDocID   string
	GristTableID string
	GristAPIURL  string

	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOBucket     string
	MinIOUseSSL     bool
	MinIOPublicRead bool

	Throttle time.Duration
	LogFile  string
	LogLevel slog.Level
}

const (
	defaultThrottle = 50 * time.Millisecond
	defaultLogFile  = "upload_dxf_to_minio.log"
)

type ErrMissingRequiredEnvVar struct {
	Name string
}

func (e *ErrMissingRequiredEnvVar) Error() string {
	return fmt.Sprintf("required environment variable %q is not set", e.Name)
}

type ErrInvalidEnvVar struct {
	Name  string
	Value string
}

func (e *ErrInvalidEnvVar) Error() string {
	return fmt.Sprintf("environment variable %q has invalid value %q", e.Name, e.Value)
}

// Load reads configuration from environment variables.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	config := Config{}

	required := []struct {
		name string
		dst  *string
	}{
		{"GRIST_API_KEY", &config.GristAPIKey},
		{"GRIST_DOC_ID", &config.GristDocID},
		{"GRIST_TABLE_ID", &config.GristTableID},
		{"GRIST_API_URL", &config.GristAPIURL},
		{"MINIO_ENDPOINT", &config.MinIOEndpoint},
		{"MINIO_ACCESS_KEY", &config.MinIOAccessKey},
		{"MINIO_SECRET_KEY", &config.MinIOSecretKey},
		{"MINIO_BUCKET", &config.MinIOBucket},
	}
	for _, r := range required {
		*r.dst = os.Getenv(r.name)
		if *r.dst == "" {
			return nil, &ErrMissingRequiredEnvVar{Name: r.name}
		}
	}

	config.MinIOUseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	config.MinIOPublicRead = os.Getenv("MINIO_PUBLIC_READ") != "false"

	config.Throttle = defaultThrottle
	if v := os.Getenv("SYNC_THROTTLE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, &ErrInvalidEnvVar{Name: "SYNC_THROTTLE", Value: v}
		}
		config.Throttle = d
	}

	config.LogFile = getEnv("LOG_FILE", defaultLogFile)

	config.LogLevel = slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := config.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return nil, &ErrInvalidEnvVar{Name: "LOG_LEVEL", Value: v}
		}
	}

	return &config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
