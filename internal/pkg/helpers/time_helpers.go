package helpers

import "time"

// ParseDuration parses a duration string, falling back to a default on error.
func ParseDuration(value string, defaultDuration time.Duration) time.Duration {
	if value == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultDuration
	}
	return d
}
