package util

// Argument maps come from JSON-decoded model output, so numbers arrive as
// float64 and every value needs a type assertion. These helpers centralize
// the coercions.

// StringArg returns the string value under key, or fallback when the key is
// absent or not a string.
func StringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return fallback
}

// IntArg returns the integer value under key, accepting the numeric types
// JSON decoding and Go callers produce.
func IntArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}

// BoolArg returns the boolean value under key, or fallback when the key is
// absent or not a bool.
func BoolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}
