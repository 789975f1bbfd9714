package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coda-agent/coda/agent"
	"github.com/coda-agent/coda/config"
	"github.com/coda-agent/coda/logging"
	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/tool"
	"github.com/coda-agent/coda/tool/builtin"
)

type options struct {
	provider      string
	modelName     string
	maxIterations int
	noStream      bool
	verbose       bool
	configPath    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "coda [prompt]",
		Short:         "AI coding assistant for the terminal",
		Long: "coda is an AI coding assistant that can read, write and edit files,\n" +
			"run shell commands and search your project. Run it without arguments\n" +
			"to start an interactive session, or pass a prompt for a single turn.",
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, err := buildAgent(opts)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				return runOnce(cmd.Context(), a, args, opts)
			}
			return runInteractive(cmd.Context(), a, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.provider, "provider", "p", "", "model provider (anthropic, openrouter, ollama, huggingface)")
	flags.StringVarP(&opts.modelName, "model", "m", "", "model name (provider default if not set)")
	flags.IntVar(&opts.maxIterations, "max-iterations", 0, "maximum agent loop iterations per turn")
	flags.BoolVar(&opts.noStream, "no-stream", false, "wait for complete responses instead of streaming")
	flags.BoolVarP(&opts.verbose, "verbose", "V", false, "debug logging")
	flags.StringVar(&opts.configPath, "config", "", "settings file (default ~/.config/coda/config.yml)")

	rootCmd.AddCommand(newModelsCmd(opts))
	rootCmd.AddCommand(newToolsCmd())

	return rootCmd
}

func loadSettings(opts *options) (config.Settings, error) {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return settings, err
	}
	if opts.provider != "" {
		settings.Provider = opts.provider
	}
	if opts.modelName != "" {
		settings.Model = opts.modelName
	}
	if opts.maxIterations > 0 {
		settings.MaxIterations = opts.maxIterations
	}
	return settings, nil
}

func newLogger(opts *options) logging.Logger {
	if !opts.verbose {
		return logging.NoOpLogger{}
	}
	return logging.NewConsoleLogger(os.Stderr, logging.LevelDebug)
}

func buildAgent(opts *options) (*agent.Agent, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(opts)

	provider, err := model.New(settings.Provider, model.Config{
		Model:  settings.Model,
		APIKey: settings.APIKey(settings.Provider),
		Host:   settings.OllamaHost,
	})
	if err != nil {
		return nil, err
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	registry := tool.NewRegistry(func(o *tool.RegistryOptions) {
		o.WorkingDir = workingDir
		o.Logger = logger
	})
	if err := builtin.Register(registry, func(o *builtin.Options) {
		o.BashTimeout = settings.Timeout
		o.BlockedCommands = settings.BlockedCommands
	}); err != nil {
		return nil, err
	}

	return agent.New(provider, registry, workingDir, func(o *agent.Options) {
		o.MaxIterations = settings.MaxIterations
		o.Observer = newConsoleObserver()
		o.Logger = logger
	}), nil
}
