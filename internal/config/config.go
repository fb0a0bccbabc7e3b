// Package config loads simnet settings from the environment and sets up logging.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// Analytics backend
	APIURL        string
	ClientTimeout time.Duration

	// Explorer
	TopK int

	// Renderer bridge
	ListenAddr string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		APIURL:        getEnv("SIMNET_API_URL", "http://localhost:8000"),
		ClientTimeout: parseDuration(getEnv("SIMNET_CLIENT_TIMEOUT", ""), 60*time.Second),

		TopK: parsePositiveInt(getEnv("SIMNET_TOP_K", ""), 5),

		ListenAddr: getEnv("SIMNET_LISTEN_ADDR", ":8585"),

		LogFile:  getEnv("SIMNET_LOG_FILE", "/tmp/simnet.log"),
		LogLevel: parseLogLevel(getEnv("SIMNET_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parsePositiveInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
