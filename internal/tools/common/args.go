package common

import (
	"fmt"
	"strings"

	"github.com/teemow/quickcal/internal/tools/batch"
)

// UserFromArgs returns the trimmed "user" argument, or "" when absent.
func UserFromArgs(args map[string]interface{}) string {
	if v, ok := args["user"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// UsersFromArgs returns the users a tool acts for.
//
// The "users" argument may be a single identifier, an array, a JSON-encoded
// array or a comma-separated list. A lone "user" argument is accepted as
// a one-element list.
func UsersFromArgs(args map[string]interface{}) ([]string, error) {
	raw, ok := args["users"]
	if !ok || raw == nil {
		if user := UserFromArgs(args); user != "" {
			return []string{user}, nil
		}
		return nil, fmt.Errorf("users is required")
	}

	if s, ok := raw.(string); ok && !strings.HasPrefix(strings.TrimSpace(s), "[") {
		users := splitList(s)
		if len(users) == 0 {
			return nil, fmt.Errorf("users is required")
		}
		return users, nil
	}

	users, err := batch.ParseStringOrArray(raw, "users")
	if err != nil {
		return nil, err
	}
	return users, nil
}

// StringsFromArgs returns an optional list argument, accepting the same
// shapes as UsersFromArgs. A missing argument yields nil.
func StringsFromArgs(args map[string]interface{}, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	if arr, ok := raw.([]interface{}); ok && len(arr) == 0 {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		if strings.TrimSpace(s) == "" || strings.TrimSpace(s) == "[]" {
			return nil, nil
		}
		if !strings.HasPrefix(strings.TrimSpace(s), "[") {
			return splitList(s), nil
		}
	}
	return batch.ParseStringOrArray(raw, name)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
