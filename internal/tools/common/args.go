package common

import (
	"fmt"
	"math"
	"strings"

	"github.com/teemow/macbridge/internal/server"
)

// StringArg returns the trimmed string argument key, or "" when it is
// missing or not a string.
func StringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// IntArg returns the whole-number argument key, or def when it is missing.
// JSON numbers arrive as float64.
func IntArg(args map[string]interface{}, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, n)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

// BoolArg returns the boolean argument key, or def when it is missing.
func BoolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// SourceSpecFromArgs reads the optional source, calendar and account
// arguments. Empty fields are filled from the config file later.
func SourceSpecFromArgs(args map[string]interface{}) server.SourceSpec {
	return server.SourceSpec{
		Source:   StringArg(args, "source"),
		Calendar: StringArg(args, "calendar"),
		Account:  StringArg(args, "account"),
	}
}
