// Package util holds small shared helpers. It lives in internal to avoid
// committing to public API stability prematurely.
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// Truncate cuts s at max bytes and appends marker when anything was removed.
func Truncate(s string, max int, marker string) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + marker
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// ResolvePath makes path absolute, resolving relative paths against base
// (or the process working directory when base is empty) and expanding ~.
func ResolvePath(path, base string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	if base == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		return abs
	}
	return filepath.Join(base, path)
}

// CountLines returns the number of lines in s, counting a trailing partial
// line as a line.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
