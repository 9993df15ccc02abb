package billing

import (
	"os"
	"strings"
	"time"
)

// GetenvOrDefault returns the value of the environment variable when set
// and non-blank, otherwise the provided default.
func GetenvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}

	return defaultValue
}

// GetenvDurationOrDefault parses the environment variable as a
// time.Duration, returning the default when unset or unparsable.
func GetenvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
