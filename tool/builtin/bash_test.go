package builtin

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coda-agent/coda/tool"
)

func TestBashEcho(t *testing.T) {
	b := NewBashTool()

	out, err := b.Execute(map[string]any{"command": "echo hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestBashExitCodePrefix(t *testing.T) {
	b := NewBashTool()

	out, err := b.Execute(map[string]any{"command": "echo oops >&2; exit 3"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[Exit code: 3]"))
	assert.Contains(t, out, "oops")
}

func TestBashNoOutput(t *testing.T) {
	b := NewBashTool()

	out, err := b.Execute(map[string]any{"command": "true"})
	require.NoError(t, err)
	assert.Equal(t, "(no output)", out)
}

func TestBashBlockedCommand(t *testing.T) {
	b := NewBashTool()

	_, err := b.Execute(map[string]any{"command": "rm -rf / --no-preserve-root"})
	var execErr *tool.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Reason, "blocked")
}

func TestBashCustomBlockedPattern(t *testing.T) {
	b := NewBashTool(func(o *BashOptions) {
		o.BlockedPatterns = []string{"shutdown"}
	})

	_, err := b.Execute(map[string]any{"command": "shutdown -h now"})
	require.Error(t, err)
}

func TestBashWorkingDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	b := NewBashTool()

	out, err := b.Execute(map[string]any{"command": "pwd", "working_dir": dir})
	require.NoError(t, err)
	assert.Equal(t, resolved, strings.TrimSpace(out))
}

func TestBashTimeout(t *testing.T) {
	b := NewBashTool()

	_, err := b.Execute(map[string]any{"command": "sleep 5", "timeout": float64(1)})
	var execErr *tool.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Reason, "timed out")
}

func TestBashMissingCommand(t *testing.T) {
	b := NewBashTool()

	_, err := b.Execute(map[string]any{})
	require.Error(t, err)
}
