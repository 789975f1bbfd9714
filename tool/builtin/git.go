package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

const gitTimeout = 30 * time.Second

func runGit(dir string, args ...string) (stdout, stderr string, exitCode int, err error) {
	if _, lookErr := exec.LookPath("git"); lookErr != nil {
		return "", "", -1, tool.NewExecutionError("git", "Git is not installed or not in PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", "", -1, tool.NewExecutionError("git", "Git command timed out after %s", gitTimeout)
	}

	code := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return "", "", -1, tool.NewExecutionError("git", "Git command failed: %v", runErr)
		}
		code = exitErr.ExitCode()
	}
	return outBuf.String(), errBuf.String(), code, nil
}

func repoDir(args map[string]any) string {
	if path := util.StringArg(args, "path", ""); path != "" {
		return resolvePath(args, path)
	}
	return util.StringArg(args, "working_dir", "")
}

var repoPathParameter = tool.Parameter{
	Name:        "path",
	Type:        "string",
	Description: "Path to the git repository (defaults to the working directory)",
}

// GitStatusTool shows the working tree status.
type GitStatusTool struct{}

func (t *GitStatusTool) Name() string { return "git_status" }

func (t *GitStatusTool) Description() string {
	return "Show the working tree status - modified, staged, and untracked files."
}

func (t *GitStatusTool) Parameters() []tool.Parameter {
	return []tool.Parameter{repoPathParameter}
}

func (t *GitStatusTool) Execute(args map[string]any) (string, error) {
	stdout, stderr, code, err := runGit(repoDir(args), "status", "--short", "--branch")
	if err != nil {
		return "", err
	}
	if code != 0 {
		if strings.Contains(strings.ToLower(stderr), "not a git repository") {
			return "Not a git repository", nil
		}
		return "", tool.NewExecutionError(t.Name(), "%s", strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stdout) == "" {
		return "Working tree clean, nothing to commit", nil
	}
	return strings.TrimSpace(stdout), nil
}

// GitDiffTool shows unstaged or staged changes.
type GitDiffTool struct{}

func (t *GitDiffTool) Name() string { return "git_diff" }

func (t *GitDiffTool) Description() string {
	return "Show changes between commits, working tree, etc. Shows unstaged changes by default."
}

func (t *GitDiffTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		repoPathParameter,
		{
			Name:        "file",
			Type:        "string",
			Description: "Specific file to diff (optional)",
		},
		{
			Name:        "staged",
			Type:        "boolean",
			Description: "Show staged changes instead of unstaged",
		},
	}
}

func (t *GitDiffTool) Execute(args map[string]any) (string, error) {
	gitArgs := []string{"diff"}
	staged := util.BoolArg(args, "staged", false)
	if staged {
		gitArgs = append(gitArgs, "--cached")
	}
	if file := util.StringArg(args, "file", ""); file != "" {
		gitArgs = append(gitArgs, "--", file)
	}

	stdout, stderr, code, err := runGit(repoDir(args), gitArgs...)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", tool.NewExecutionError(t.Name(), "%s", strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stdout) == "" {
		if staged {
			return "No changes staged", nil
		}
		return "No changes", nil
	}
	return strings.TrimSpace(stdout), nil
}

// GitLogTool shows commit history.
type GitLogTool struct{}

func (t *GitLogTool) Name() string { return "git_log" }

func (t *GitLogTool) Description() string {
	return "Show commit history."
}

func (t *GitLogTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		repoPathParameter,
		{
			Name:        "count",
			Type:        "integer",
			Description: "Number of commits to show (default 10)",
		},
		{
			Name:        "oneline",
			Type:        "boolean",
			Description: "Show each commit on one line",
		},
	}
}

func (t *GitLogTool) Execute(args map[string]any) (string, error) {
	count := util.IntArg(args, "count", 10)
	gitArgs := []string{"log", fmt.Sprintf("-%d", count)}
	if util.BoolArg(args, "oneline", true) {
		gitArgs = append(gitArgs, "--oneline")
	}

	stdout, stderr, code, err := runGit(repoDir(args), gitArgs...)
	if err != nil {
		return "", err
	}
	if code != 0 {
		if strings.Contains(strings.ToLower(stderr), "does not have any commits") {
			return "No commits yet", nil
		}
		return "", tool.NewExecutionError(t.Name(), "%s", strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stdout) == "" {
		return "No commits", nil
	}
	return strings.TrimSpace(stdout), nil
}

// GitAddTool stages files for commit.
type GitAddTool struct{}

func (t *GitAddTool) Name() string { return "git_add" }

func (t *GitAddTool) Description() string {
	return "Stage files for commit."
}

func (t *GitAddTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "files",
			Type:        "string",
			Description: "Files to stage (space-separated, or '.' for all)",
			Required:    true,
		},
		repoPathParameter,
	}
}

func (t *GitAddTool) Execute(args map[string]any) (string, error) {
	files := util.StringArg(args, "files", "")
	if files == "" {
		return "", tool.NewExecutionError(t.Name(), "files is required")
	}

	gitArgs := append([]string{"add"}, strings.Fields(files)...)
	_, stderr, code, err := runGit(repoDir(args), gitArgs...)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", tool.NewExecutionError(t.Name(), "%s", strings.TrimSpace(stderr))
	}
	return fmt.Sprintf("Staged: %s", files), nil
}

// GitCommitTool creates a commit with staged changes.
type GitCommitTool struct{}

func (t *GitCommitTool) Name() string { return "git_commit" }

func (t *GitCommitTool) Description() string {
	return "Create a commit with staged changes."
}

func (t *GitCommitTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "message",
			Type:        "string",
			Description: "Commit message",
			Required:    true,
		},
		repoPathParameter,
	}
}

func (t *GitCommitTool) Execute(args map[string]any) (string, error) {
	message := util.StringArg(args, "message", "")
	if message == "" {
		return "", tool.NewExecutionError(t.Name(), "message is required")
	}

	stdout, stderr, code, err := runGit(repoDir(args), "commit", "-m", message)
	if err != nil {
		return "", err
	}
	if code != 0 {
		combined := strings.ToLower(stdout + stderr)
		if strings.Contains(combined, "nothing to commit") {
			return "Nothing to commit", nil
		}
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = strings.TrimSpace(stdout)
		}
		return "", tool.NewExecutionError(t.Name(), "%s", detail)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) > 0 && lines[0] != "" {
		return lines[0], nil
	}
	return "Committed", nil
}
