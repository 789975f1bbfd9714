package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/coda-agent/coda/internal/util"
	"github.com/coda-agent/coda/tool"
)

const (
	// DefaultBashTimeout is the default command timeout in seconds.
	DefaultBashTimeout = 120
	// MaxBashTimeout caps the per-call timeout override.
	MaxBashTimeout = 600

	maxBashOutput = 30000
)

// blockedPatterns are command substrings refused unconditionally.
var blockedPatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"rm -rf ~",
	"rm -rf $HOME",
	"> /dev/sda",
	"dd if=/dev/zero",
	"mkfs.",
	":(){:|:&};:",
	"chmod -R 777 /",
	"chown -R",
}

// BashOptions configure a BashTool.
type BashOptions struct {
	// Timeout is the default command timeout in seconds.
	Timeout int
	// BlockedPatterns are additional substrings to refuse.
	BlockedPatterns []string
}

// BashTool executes shell commands in the session working directory. Output
// combines stdout and stderr, is truncated past 30000 bytes, and carries an
// exit code prefix on failure.
type BashTool struct {
	timeout int
	blocked []string
}

// NewBashTool creates a bash tool.
func NewBashTool(optFns ...func(o *BashOptions)) *BashTool {
	opts := BashOptions{
		Timeout: DefaultBashTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBashTimeout
	}

	blocked := make([]string, 0, len(blockedPatterns)+len(opts.BlockedPatterns))
	blocked = append(blocked, blockedPatterns...)
	blocked = append(blocked, opts.BlockedPatterns...)

	return &BashTool{
		timeout: opts.Timeout,
		blocked: blocked,
	}
}

func (t *BashTool) Name() string { return "bash" }

func (t *BashTool) Description() string {
	return "Execute a bash command and return the output. " +
		"Use for running builds, tests, git commands, and other shell operations. " +
		"Commands run in the project directory."
}

func (t *BashTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{
			Name:        "command",
			Type:        "string",
			Description: "The bash command to execute",
			Required:    true,
		},
		{
			Name:        "timeout",
			Type:        "integer",
			Description: fmt.Sprintf("Timeout in seconds (default: %d, max: %d)", DefaultBashTimeout, MaxBashTimeout),
			Default:     DefaultBashTimeout,
		},
	}
}

func (t *BashTool) isBlocked(command string) bool {
	lower := strings.ToLower(command)
	for _, pattern := range t.blocked {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func (t *BashTool) Execute(args map[string]any) (string, error) {
	command := util.StringArg(args, "command", "")
	if command == "" {
		return "", tool.NewExecutionError(t.Name(), "command is required")
	}
	if t.isBlocked(command) {
		return "", tool.NewExecutionError(t.Name(), "Command blocked for safety. This command pattern is not allowed.")
	}

	timeout := util.IntArg(args, "timeout", t.timeout)
	if timeout > MaxBashTimeout {
		timeout = MaxBashTimeout
	}
	if timeout <= 0 {
		timeout = t.timeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	if wd := util.StringArg(args, "working_dir", ""); wd != "" {
		cmd.Dir = wd
	}
	// Process group so the whole pipeline dies on timeout, not just bash.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.Env = append(os.Environ(), "TERM=dumb")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", tool.NewExecutionError(t.Name(), "Command timed out after %d seconds", timeout)
	}

	output := stdout.String() + stderr.String()
	output = util.Truncate(output, maxBashOutput, "\n\n... (output truncated)")

	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return "", tool.NewExecutionError(t.Name(), "Command execution failed: %v", err)
		}
		output = fmt.Sprintf("[Exit code: %d]\n\n%s", exitErr.ExitCode(), output)
	}

	if strings.TrimSpace(output) == "" {
		return "(no output)", nil
	}
	return output, nil
}
