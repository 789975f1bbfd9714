package builtin

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

// DeleteTool removes files and directories.
type DeleteTool struct{}

func (t *DeleteTool) Name() string { return "delete" }

func (t *DeleteTool) Description() string {
	return "Delete a file or directory. For non-empty directories set recursive=true. " +
		"Be careful - this action cannot be undone."
}

func (t *DeleteTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "path",
			Type:        "string",
			Description: "Path to the file or directory to delete",
			Required:    true,
		},
		{
			Name:        "recursive",
			Type:        "boolean",
			Description: "Delete directories with all contents. Required for non-empty directories",
			Default:     false,
		},
	}
}

func (t *DeleteTool) Execute(args map[string]any) (string, error) {
	path := util.StringArg(args, "path", "")
	if path == "" {
		return "", tool.NewExecutionError(t.Name(), "path is required")
	}
	target := resolvePath(args, path)

	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Path does not exist: %s", path)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to access path: %v", err)
	}

	if !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return "", tool.NewExecutionError(t.Name(), "Failed to delete: %v", err)
		}
		return fmt.Sprintf("Deleted file: %s", path), nil
	}

	if util.BoolArg(args, "recursive", false) {
		if err := os.RemoveAll(target); err != nil {
			return "", tool.NewExecutionError(t.Name(), "Failed to delete: %v", err)
		}
		return fmt.Sprintf("Deleted directory and contents: %s", path), nil
	}
	if err := os.Remove(target); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Directory not empty. Use recursive=true to delete: %s", path)
	}
	return fmt.Sprintf("Deleted empty directory: %s", path), nil
}

// CopyTool copies files and directories.
type CopyTool struct{}

func (t *CopyTool) Name() string { return "copy" }

func (t *CopyTool) Description() string {
	return "Copy a file or directory to a new location."
}

func (t *CopyTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "source",
			Type:        "string",
			Description: "Path to the source file or directory",
			Required:    true,
		},
		{
			Name:        "destination",
			Type:        "string",
			Description: "Path to the destination",
			Required:    true,
		},
	}
}

func (t *CopyTool) Execute(args map[string]any) (string, error) {
	source := util.StringArg(args, "source", "")
	destination := util.StringArg(args, "destination", "")
	if source == "" || destination == "" {
		return "", tool.NewExecutionError(t.Name(), "source and destination are required")
	}
	src := resolvePath(args, source)
	dst := resolvePath(args, destination)

	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Source does not exist: %s", source)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to access source: %v", err)
	}

	if info.IsDir() {
		if _, err := os.Stat(dst); err == nil {
			return "", tool.NewExecutionError(t.Name(), "Destination already exists: %s", destination)
		}
		if err := copyDir(src, dst); err != nil {
			return "", tool.NewExecutionError(t.Name(), "Failed to copy: %v", err)
		}
		return fmt.Sprintf("Copied directory: %s -> %s", source, destination), nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to copy: %v", err)
	}
	if err := copyFile(src, dst, info.Mode()); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to copy: %v", err)
	}
	return fmt.Sprintf("Copied file: %s -> %s", source, destination), nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}

// MoveTool moves or renames files and directories.
type MoveTool struct{}

func (t *MoveTool) Name() string { return "move" }

func (t *MoveTool) Description() string {
	return "Move or rename a file or directory."
}

func (t *MoveTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "source",
			Type:        "string",
			Description: "Path to the source file or directory",
			Required:    true,
		},
		{
			Name:        "destination",
			Type:        "string",
			Description: "Path to the destination",
			Required:    true,
		},
	}
}

func (t *MoveTool) Execute(args map[string]any) (string, error) {
	source := util.StringArg(args, "source", "")
	destination := util.StringArg(args, "destination", "")
	if source == "" || destination == "" {
		return "", tool.NewExecutionError(t.Name(), "source and destination are required")
	}
	src := resolvePath(args, source)
	dst := resolvePath(args, destination)

	if _, err := os.Stat(src); os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Source does not exist: %s", source)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to move: %v", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to move: %v", err)
	}
	return fmt.Sprintf("Moved: %s -> %s", source, destination), nil
}

// MkdirTool creates directories.
type MkdirTool struct{}

func (t *MkdirTool) Name() string { return "mkdir" }

func (t *MkdirTool) Description() string {
	return "Create a new directory. Creates parent directories if they don't exist."
}

func (t *MkdirTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "path",
			Type:        "string",
			Description: "Path of the directory to create",
			Required:    true,
		},
	}
}

func (t *MkdirTool) Execute(args map[string]any) (string, error) {
	path := util.StringArg(args, "path", "")
	if path == "" {
		return "", tool.NewExecutionError(t.Name(), "path is required")
	}
	target := resolvePath(args, path)

	if info, err := os.Stat(target); err == nil {
		if info.IsDir() {
			return fmt.Sprintf("Directory already exists: %s", path), nil
		}
		return "", tool.NewExecutionError(t.Name(), "Path exists but is not a directory: %s", path)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to create directory: %v", err)
	}
	return fmt.Sprintf("Created directory: %s", path), nil
}
