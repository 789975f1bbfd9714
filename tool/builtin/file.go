package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

const (
	defaultReadLimit = 2000
	maxLineLength    = 2000
)

// resolvePath makes a tool path absolute against the injected working
// directory.
func resolvePath(args map[string]any, path string) string {
	return util.ResolvePath(path, util.StringArg(args, "working_dir", ""))
}

// ReadFileTool reads file contents with line numbers.
type ReadFileTool struct{}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file. Returns the file content with line numbers. " +
		"Use offset and limit for large files."
}

func (t *ReadFileTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "file_path",
			Type:        "string",
			Description: "Path to the file to read",
			Required:    true,
		},
		{
			Name:        "offset",
			Type:        "integer",
			Description: "Line number to start reading from (0-indexed)",
			Default:     0,
		},
		{
			Name:        "limit",
			Type:        "integer",
			Description: "Maximum number of lines to read",
			Default:     defaultReadLimit,
		},
	}
}

func (t *ReadFileTool) Execute(args map[string]any) (string, error) {
	filePath := util.StringArg(args, "file_path", "")
	if filePath == "" {
		return "", tool.NewExecutionError(t.Name(), "file_path is required")
	}
	path := resolvePath(args, filePath)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "File not found: %s", filePath)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to read file: %v", err)
	}
	if info.IsDir() {
		return "", tool.NewExecutionError(t.Name(), "Not a file: %s", filePath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return "", tool.NewExecutionError(t.Name(), "Permission denied: %s", filePath)
		}
		return "", tool.NewExecutionError(t.Name(), "Failed to read file: %v", err)
	}

	offset := util.IntArg(args, "offset", 0)
	limit := util.IntArg(args, "limit", defaultReadLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultReadLimit
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	total := len(lines)

	if offset >= total {
		return fmt.Sprintf("Offset %d is past the end of the file (%d lines)", offset, total), nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	var sb strings.Builder
	for i, line := range lines[offset:end] {
		if len(line) > maxLineLength {
			line = line[:maxLineLength] + "... (truncated)"
		}
		fmt.Fprintf(&sb, "%6d\t%s", offset+i+1, line)
		if offset+i+1 < end {
			sb.WriteByte('\n')
		}
	}
	result := sb.String()

	if offset > 0 || end < total {
		result = fmt.Sprintf("[Showing lines %d-%d of %d total lines]\n\n%s", offset+1, end, total, result)
	}
	return result, nil
}

// WriteFileTool creates or overwrites files.
type WriteFileTool struct{}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Create a new file or overwrite an existing file with the given content. " +
		"Use this for creating new files. For modifying existing files, prefer edit_file."
}

func (t *WriteFileTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "file_path",
			Type:        "string",
			Description: "Path where the file should be written",
			Required:    true,
		},
		{
			Name:        "content",
			Type:        "string",
			Description: "The content to write to the file",
			Required:    true,
		},
	}
}

func (t *WriteFileTool) Execute(args map[string]any) (string, error) {
	filePath := util.StringArg(args, "file_path", "")
	if filePath == "" {
		return "", tool.NewExecutionError(t.Name(), "file_path is required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return "", tool.NewExecutionError(t.Name(), "content is required")
	}
	path := resolvePath(args, filePath)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", tool.NewExecutionError(t.Name(), "Cannot write to directory: %s", filePath)
	}
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Parent directory does not exist: %s", filepath.Dir(path))
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		if os.IsPermission(err) {
			return "", tool.NewExecutionError(t.Name(), "Permission denied: %s", filePath)
		}
		return "", tool.NewExecutionError(t.Name(), "Failed to write file: %v", err)
	}

	action := "Wrote"
	if isNew {
		action = "Created"
	}
	return fmt.Sprintf("%s %s (%d lines, %d bytes)", action, filePath, util.CountLines(content), len(content)), nil
}

// EditFileTool replaces an exact string in a file.
type EditFileTool struct{}

func (t *EditFileTool) Name() string { return "edit_file" }

func (t *EditFileTool) Description() string {
	return "Edit a file by replacing a specific string with a new string. " +
		"The old_string must match EXACTLY including whitespace and indentation. " +
		"For multi-line edits, include enough context to make the match unique. " +
		"Always read the file first before editing."
}

func (t *EditFileTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "file_path",
			Type:        "string",
			Description: "Path to the file to edit",
			Required:    true,
		},
		{
			Name:        "old_string",
			Type:        "string",
			Description: "The exact string to find (must match exactly including whitespace)",
			Required:    true,
		},
		{
			Name:        "new_string",
			Type:        "string",
			Description: "The string to replace old_string with",
			Required:    true,
		},
		{
			Name:        "replace_all",
			Type:        "boolean",
			Description: "If true, replace all occurrences. If false (default), old_string must be unique",
			Default:     false,
		},
	}
}

func (t *EditFileTool) Execute(args map[string]any) (string, error) {
	filePath := util.StringArg(args, "file_path", "")
	if filePath == "" {
		return "", tool.NewExecutionError(t.Name(), "file_path is required")
	}
	oldString, ok := args["old_string"].(string)
	if !ok || oldString == "" {
		return "", tool.NewExecutionError(t.Name(), "old_string is required")
	}
	newString, ok := args["new_string"].(string)
	if !ok {
		return "", tool.NewExecutionError(t.Name(), "new_string is required")
	}
	replaceAll := util.BoolArg(args, "replace_all", false)
	path := resolvePath(args, filePath)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "File not found: %s", filePath)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to read file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, oldString) {
		msg := "old_string not found in file."
		if strings.Contains(content, strings.TrimSpace(oldString)) {
			msg += "\n\nThe text exists but whitespace doesn't match. Check indentation."
		}
		return "", tool.NewExecutionError(t.Name(), "%s", msg)
	}

	count := strings.Count(content, oldString)
	if !replaceAll && count > 1 {
		return "", tool.NewExecutionError(t.Name(),
			"old_string appears %d times. Use replace_all=true or include more context to make it unique.", count)
	}
	if oldString == newString {
		return "", tool.NewExecutionError(t.Name(), "old_string and new_string are identical. No changes made.")
	}

	var newContent string
	if replaceAll {
		newContent = strings.ReplaceAll(content, oldString, newString)
	} else {
		newContent = strings.Replace(content, oldString, newString, 1)
	}

	if err := os.WriteFile(path, []byte(newContent), 0o644); err != nil {
		if os.IsPermission(err) {
			return "", tool.NewExecutionError(t.Name(), "Permission denied writing: %s", filePath)
		}
		return "", tool.NewExecutionError(t.Name(), "Failed to write file: %v", err)
	}

	if replaceAll {
		return fmt.Sprintf("Replaced %d occurrence(s) in %s", count, filePath), nil
	}
	return fmt.Sprintf("Edited %s", filePath), nil
}
