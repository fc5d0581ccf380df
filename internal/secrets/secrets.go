// Package secrets resolves credential values from environment variables or
// Docker-style secret files (the KEY_FILE indirection).
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// GetSecret resolves a secret. A KEY_FILE environment variable pointing at a
// file takes precedence over the KEY variable itself.
func GetSecret(envKey string, defaultValue string) (string, error) {
	if filePath := os.Getenv(envKey + "_FILE"); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read secret file %s: %w", filePath, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if value := os.Getenv(envKey); value != "" {
		return value, nil
	}

	return defaultValue, nil
}

// GetOptionalSecret resolves a secret, falling back to the default on any error.
func GetOptionalSecret(envKey string, defaultValue string) string {
	value, err := GetSecret(envKey, defaultValue)
	if err != nil {
		return defaultValue
	}
	return value
}
