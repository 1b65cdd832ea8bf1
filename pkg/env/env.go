// Package env reads optional TRUSTFLOW_* overrides for CLI flag defaults.
// Services load their configuration through pkg/config instead.
package env

import (
	"os"
	"strings"
	"time"
)

func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Duration parses key as a time.Duration. Unset or malformed values yield
// fallback.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
