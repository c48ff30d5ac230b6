// Package params extracts typed values from step parameter maps.
// JSON-decoded numbers arrive as float64; these helpers normalize the
// usual cases for handler configuration.
package params

// String returns the string under key, or fallback when absent or not
// a string.
func String(parameters map[string]any, key, fallback string) string {
	if value, ok := parameters[key].(string); ok {
		return value
	}

	return fallback
}

// Float returns the numeric value under key, or fallback.
func Float(parameters map[string]any, key string, fallback float64) float64 {
	switch value := parameters[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	default:
		return fallback
	}
}

// Int returns the integer value under key, or fallback.
func Int(parameters map[string]any, key string, fallback int) int {
	switch value := parameters[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return fallback
	}
}

// Strings returns the string slice under key. JSON arrays decode as
// []any, so both forms are accepted.
func Strings(parameters map[string]any, key string) []string {
	switch value := parameters[key].(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))

		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
