package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envOverride sets *dst from the environment variable env unless flag was
// set explicitly on the command line.
func envOverride(cmd *cobra.Command, flag, env string, dst *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if value := os.Getenv(env); value != "" {
		*dst = value
	}
}

// envOverrideBool is envOverride for boolean flags. Unparseable values are ignored.
func envOverrideBool(cmd *cobra.Command, flag, env string, dst *bool) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if value := os.Getenv(env); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			*dst = b
		}
	}
}

// envOverrideInt is envOverride for integer flags. Unparseable values are ignored.
func envOverrideInt(cmd *cobra.Command, flag, env string, dst *int) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if value := os.Getenv(env); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			*dst = n
		}
	}
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
