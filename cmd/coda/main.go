// Command coda is an AI coding assistant for the terminal. Run it without
// arguments for an interactive session, or pass a prompt for a single turn.
package main

import (
	"fmt"
	"os"

	// Provider registration.
	_ "github.com/coda-agent/coda/model/anthropic"
	_ "github.com/coda-agent/coda/model/huggingface"
	_ "github.com/coda-agent/coda/model/ollama"
	_ "github.com/coda-agent/coda/model/openrouter"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
