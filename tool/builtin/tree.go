package builtin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

const (
	defaultTreeDepth = 5
	maxTreeDepth     = 10
	maxTreeEntries   = 500
)

// TreeTool renders a directory hierarchy as a text tree.
type TreeTool struct{}

func (t *TreeTool) Name() string { return "tree" }

func (t *TreeTool) Description() string {
	return "Display directory structure as a tree. Useful for understanding project layout. " +
		"Automatically ignores common directories like node_modules, .git and __pycache__."
}

func (t *TreeTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "path",
			Type:        "string",
			Description: "Directory to display (default: working directory)",
		},
		{
			Name:        "max_depth",
			Type:        "integer",
			Description: "Maximum depth to traverse (default: 5, max: 10)",
			Default:     defaultTreeDepth,
		},
		{
			Name:        "show_hidden",
			Type:        "boolean",
			Description: "Show hidden files and directories",
			Default:     false,
		},
	}
}

func (t *TreeTool) Execute(args map[string]any) (string, error) {
	dir := util.StringArg(args, "path", "")
	if dir == "" {
		dir = util.StringArg(args, "working_dir", ".")
	} else {
		dir = resolvePath(args, dir)
	}
	maxDepth := util.IntArg(args, "max_depth", defaultTreeDepth)
	if maxDepth < 1 {
		maxDepth = defaultTreeDepth
	}
	if maxDepth > maxTreeDepth {
		maxDepth = maxTreeDepth
	}
	showHidden := util.BoolArg(args, "show_hidden", false)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "", tool.NewExecutionError(t.Name(), "Path does not exist: %s", dir)
	}
	if err != nil {
		return "", tool.NewExecutionError(t.Name(), "Failed to access path: %v", err)
	}
	if !info.IsDir() {
		return "", tool.NewExecutionError(t.Name(), "Not a directory: %s", dir)
	}

	count := 0
	lines := []string{filepath.Base(dir) + "/"}
	lines = append(lines, buildTree(dir, "", 1, maxDepth, showHidden, &count)...)

	out := strings.Join(lines, "\n")
	if count >= maxTreeEntries {
		out += fmt.Sprintf("\n\n(Showing first %d entries)", maxTreeEntries)
	}
	return out, nil
}

// buildTree lists one level, directories before files, recursing with the
// usual box-drawing connectors.
func buildTree(dir, prefix string, depth, maxDepth int, showHidden bool, count *int) []string {
	if depth > maxDepth || *count >= maxTreeEntries {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{prefix + "[permission denied]"}
	}

	kept := entries[:0]
	for _, e := range entries {
		name := e.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() && ignoredDirs[name] {
			continue
		}
		kept = append(kept, e)
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].IsDir() != kept[j].IsDir() {
			return kept[i].IsDir()
		}
		return strings.ToLower(kept[i].Name()) < strings.ToLower(kept[j].Name())
	})

	var lines []string
	for i, e := range kept {
		if *count >= maxTreeEntries {
			lines = append(lines, prefix+"... (truncated)")
			break
		}
		*count++

		connector, extension := "├── ", "│   "
		if i == len(kept)-1 {
			connector, extension = "└── ", "    "
		}
		if e.IsDir() {
			lines = append(lines, prefix+connector+e.Name()+"/")
			lines = append(lines, buildTree(filepath.Join(dir, e.Name()), prefix+extension, depth+1, maxDepth, showHidden, count)...)
		} else {
			lines = append(lines, prefix+connector+e.Name())
		}
	}
	return lines
}
