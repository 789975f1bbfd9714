package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/coda-agent/coda/core"
	"github.com/coda-agent/coda/internal/util"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// renderMarkdown pretty-prints markdown for terminals; plain passthrough
// when output is piped.
func renderMarkdown(text string) string {
	if !stdoutIsTTY() {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// consoleObserver prints tool activity as the loop executes calls.
type consoleObserver struct{}

func newConsoleObserver() *consoleObserver { return &consoleObserver{} }

func (o *consoleObserver) OnToolStart(call core.ToolCall) {
	args := formatArgs(call.Arguments)
	fmt.Println(toolStyle.Render("  → "+call.Name) + dimStyle.Render("("+args+")"))
}

func (o *consoleObserver) OnToolEnd(result core.ToolResult) {
	if result.IsError {
		fmt.Println(errorStyle.Render("  ✗ ") + dimStyle.Render(firstLine(result.Content)))
		return
	}
	fmt.Println(okStyle.Render("  ✓ ") + dimStyle.Render(firstLine(result.Content)))
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	return util.Truncate(string(data), 80, "...")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return util.Truncate(s, 100, "...")
}

func printWelcome(modelName, workingDir string) {
	home, _ := os.UserHomeDir()
	displayPath := workingDir
	if home != "" && strings.HasPrefix(workingDir, home) {
		displayPath = "~" + strings.TrimPrefix(workingDir, home)
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("  ◆ coda") + dimStyle.Render("  v"+version))
	fmt.Println()
	fmt.Println(dimStyle.Render("  Model:") + "  " + modelName)
	fmt.Println(dimStyle.Render("  Path:") + "   " + displayPath)
	fmt.Println()
	fmt.Println(dimStyle.Render("  Commands: exit  clear  history  help"))
	fmt.Println()
}
