package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/coda-agent/coda/agent"
	"github.com/coda-agent/coda/core"
)

// runOnce processes a single prompt and exits.
func runOnce(ctx context.Context, a *agent.Agent, args []string, opts *options) error {
	prompt := strings.Join(args, " ")

	if opts.noStream || !stdoutIsTTY() {
		out, err := a.Run(ctx, prompt)
		if err != nil {
			return err
		}
		fmt.Print(renderMarkdown(out))
		return nil
	}
	return streamTurn(ctx, a, prompt)
}

// runInteractive starts the chat session loop.
func runInteractive(ctx context.Context, a *agent.Agent, opts *options) error {
	printWelcome(a.Provider().Model(), a.WorkingDir())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			return nil
		case "clear":
			a.Reset()
			fmt.Println(dimStyle.Render("History cleared"))
			continue
		case "history":
			printHistory(a.Messages())
			continue
		case "help":
			fmt.Println(dimStyle.Render("exit     quit"))
			fmt.Println(dimStyle.Render("clear    reset history"))
			fmt.Println(dimStyle.Render("history  show conversation"))
			fmt.Println(dimStyle.Render("help     this message"))
			continue
		}

		var err error
		if opts.noStream {
			var out string
			out, err = a.Run(ctx, input)
			if err == nil {
				fmt.Print(renderMarkdown(out))
			}
		} else {
			err = streamTurn(ctx, a, input)
		}

		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			return nil
		default:
			var maxErr *agent.MaxIterationsError
			if errors.As(err, &maxErr) {
				fmt.Println(errorStyle.Render(fmt.Sprintf("Stopped after %d iterations.", maxErr.Limit)))
			} else {
				fmt.Println(errorStyle.Render("Error: " + err.Error()))
			}
		}
		fmt.Println()
	}
}

// streamTurn runs one turn, printing fragments as they arrive.
func streamTurn(ctx context.Context, a *agent.Agent, input string) error {
	chunks, errCh := a.Stream(ctx, input)

	printed := false
	for chunk := range chunks {
		fmt.Print(chunk)
		printed = true
	}
	if printed {
		fmt.Println()
	}
	return <-errCh
}

func printHistory(messages []core.Message) {
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			fmt.Println(dimStyle.Render("[system] " + firstLine(m.Content)))
		case core.RoleUser:
			fmt.Println(promptStyle.Render("[user] ") + m.Content)
		case core.RoleAssistant:
			line := m.Content
			if len(m.ToolCalls) > 0 {
				names := make([]string, len(m.ToolCalls))
				for i, tc := range m.ToolCalls {
					names[i] = tc.Name
				}
				line = strings.TrimSpace(line + " [tools: " + strings.Join(names, ", ") + "]")
			}
			fmt.Println("[assistant] " + line)
		case core.RoleTool:
			fmt.Println(dimStyle.Render("[tool] " + firstLine(m.Content)))
		}
	}
}
