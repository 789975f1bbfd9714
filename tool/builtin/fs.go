package builtin

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

// ignoredDirs are directory names skipped by glob and grep.
var ignoredDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	"node_modules":  true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"dist":          true,
	"build":         true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".ruff_cache":   true,
}

// LsTool lists directory contents.
type LsTool struct{}

func (t *LsTool) Name() string { return "ls" }

func (t *LsTool) Description() string {
	return "List the contents of a directory. Directories are shown with a trailing slash."
}

func (t *LsTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "path",
			Type:        "string",
			Description: "Directory to list (default: working directory)",
		},
		{
			Name:        "show_hidden",
			Type:        "boolean",
			Description: "Include entries starting with a dot",
			Default:     false,
		},
	}
}

func (t *LsTool) Execute(args map[string]any) (string, error) {
	dir := util.StringArg(args, "path", "")
	if dir == "" {
		dir = util.StringArg(args, "working_dir", ".")
	} else {
		dir = resolvePath(args, dir)
	}
	showHidden := util.BoolArg(args, "show_hidden", false)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Directory not found: %s", dir)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to list directory: %v", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "(empty directory)", nil
	}

	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

// GlobTool finds files matching a glob pattern. Patterns may use ** to match
// any number of directories.
type GlobTool struct{}

func (t *GlobTool) Name() string { return "glob" }

func (t *GlobTool) Description() string {
	return "Find files matching a glob pattern. " +
		"Use patterns like '**/*.go' for all Go files, " +
		"'src/**/*.ts' for TypeScript files in src, " +
		"or '*.json' for JSON files in the current directory."
}

func (t *GlobTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "pattern",
			Type:        "string",
			Description: "Glob pattern to match (e.g., '**/*.go', 'src/*.ts')",
			Required:    true,
		},
		{
			Name:        "path",
			Type:        "string",
			Description: "Base directory to search from (default: working directory)",
		},
		{
			Name:        "max_results",
			Type:        "integer",
			Description: "Maximum number of files to return",
			Default:     100,
		},
		{
			Name:        "include_hidden",
			Type:        "boolean",
			Description: "Include hidden files (starting with .)",
			Default:     false,
		},
	}
}

func (t *GlobTool) Execute(args map[string]any) (string, error) {
	pattern := util.StringArg(args, "pattern", "")
	if pattern == "" {
		return "", tool.NewExecutionError(t.Name(), "pattern is required")
	}
	base := util.StringArg(args, "path", "")
	if base == "" {
		base = util.StringArg(args, "working_dir", ".")
	} else {
		base = resolvePath(args, base)
	}
	maxResults := util.IntArg(args, "max_results", 100)
	includeHidden := util.BoolArg(args, "include_hidden", false)

	info, err := os.Stat(base)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Directory not found: %s", base)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to access directory: %v", err)
	}
	if !info.IsDir() {
		return "", tool.NewExecutionError(t.Name(), "Not a directory: %s", base)
	}

	var matches []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if ignoredDirs[d.Name()] || (!includeHidden && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !includeHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if matchGlob(pattern, filepath.ToSlash(rel)) {
			matches = append(matches, rel)
			if len(matches) >= maxResults {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Glob search failed: %v", err)
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No files found matching pattern: %s", pattern), nil
	}

	sort.Strings(matches)
	result := strings.Join(matches, "\n")
	if len(matches) == maxResults {
		result += fmt.Sprintf("\n\n... (limited to %d results)", maxResults)
	}
	return result, nil
}

// matchGlob matches a slash-separated relative path against a pattern where
// ** matches zero or more path segments and the remaining segments follow
// filepath.Match rules.
func matchGlob(pattern, path string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

func matchSegments(pattern, parts []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}
	if pattern[0] == "**" {
		// ** consumes zero or more leading segments.
		for skip := 0; skip <= len(parts); skip++ {
			if matchSegments(pattern[1:], parts[skip:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], parts[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], parts[1:])
}

// GrepTool searches file contents with a regular expression.
type GrepTool struct{}

func (t *GrepTool) Name() string { return "grep" }

func (t *GrepTool) Description() string {
	return "Search for a pattern in files. Returns matching lines with file paths and line numbers. " +
		"Supports regular expressions. Use for finding code, function definitions, usages, etc."
}

func (t *GrepTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "pattern",
			Type:        "string",
			Description: "The search pattern (regex supported)",
			Required:    true,
		},
		{
			Name:        "path",
			Type:        "string",
			Description: "Directory or file to search in (default: working directory)",
		},
		{
			Name:        "include",
			Type:        "string",
			Description: "File pattern to include (e.g., '*.go', '*.js')",
		},
		{
			Name:        "ignore_case",
			Type:        "boolean",
			Description: "Case-insensitive search",
			Default:     false,
		},
		{
			Name:        "max_results",
			Type:        "integer",
			Description: "Maximum number of results to return",
			Default:     50,
		},
	}
}

func (t *GrepTool) Execute(args map[string]any) (string, error) {
	pattern := util.StringArg(args, "pattern", "")
	if pattern == "" {
		return "", tool.NewExecutionError(t.Name(), "pattern is required")
	}
	if util.BoolArg(args, "ignore_case", false) {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Invalid pattern: %v", err)
	}

	root := util.StringArg(args, "path", "")
	if root == "" {
		root = util.StringArg(args, "working_dir", ".")
	} else {
		root = resolvePath(args, root)
	}
	include := util.StringArg(args, "include", "")
	maxResults := util.IntArg(args, "max_results", 50)

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Path not found: %s", root)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to access path: %v", err)
	}

	var results []string
	searchFile := func(path, display string) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNum := 0
		for scanner.Scan() && len(results) < maxResults {
			lineNum++
			line := scanner.Text()
			if strings.ContainsRune(line, '\x00') {
				return
			}
			if re.MatchString(line) {
				results = append(results, fmt.Sprintf("%s:%d:%s", display, lineNum, line))
			}
		}
	}

	if !info.IsDir() {
		searchFile(root, root)
	} else {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && (ignoredDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if include != "" {
				if ok, _ := filepath.Match(include, d.Name()); !ok {
					return nil
				}
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			searchFile(path, rel)
			if len(results) >= maxResults {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return "", tool.NewExecutionError(t.Name(), "Search failed: %v", err)
		}
	}

	if len(results) == 0 {
		return fmt.Sprintf("No matches found for pattern: %s", util.StringArg(args, "pattern", "")), nil
	}

	out := strings.Join(results, "\n")
	if len(results) >= maxResults {
		out += fmt.Sprintf("\n\n... (showing first %d results)", maxResults)
	}
	return out, nil
}
