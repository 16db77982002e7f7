package app

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	APIURL      string        // Base URL of the remote tracker API
	DataDir     string        // Directory for settings db, cookie file, log file
	Env         string        // Environment (dev, prod) (default: prod)
	LogLevel    string        // Log level (debug, info, warn, error) (default: info)
	LogFormat   string        // Log format (json, text) (default: json)
	Timeout     time.Duration // Per-request API timeout (default: 15s)
	LogoutGrace time.Duration // Delay before cached API results are purged on logout (default: 1s)
}

func LoadConfig() Config {
	cfg := Config{
		APIURL:      getEnvOrDefault("REQTRACK_API_URL", "https://eng-req-tracker-api.onrender.com"),
		DataDir:     os.Getenv("REQTRACK_DATA_DIR"),
		Env:         getEnvOrDefault("ENV", "prod"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "json"),
		Timeout:     getEnvDurationOrDefault("REQTRACK_TIMEOUT", 15*time.Second),
		LogoutGrace: getEnvDurationOrDefault("REQTRACK_LOGOUT_GRACE", time.Second),
	}

	if cfg.DataDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(base, "reqtrack")
		} else {
			cfg.DataDir = ".reqtrack"
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
