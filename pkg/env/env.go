package env

import (
	"os"
	"strings"
)

// Get returns the named variable's value, or fallback when it is unset or
// blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
