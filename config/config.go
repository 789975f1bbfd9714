// Package config loads application settings from a YAML file layered under
// environment variables, following the 12-factor convention. Environment
// variables are prefixed with CODA_ and take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for all environment variable settings.
	EnvPrefix = "CODA_"

	// DefaultMaxIterations bounds agent loop iterations per turn.
	DefaultMaxIterations = 25
	// MinMaxIterations and MaxMaxIterations clamp the configured value.
	MinMaxIterations = 1
	MaxMaxIterations = 100

	// DefaultTimeout is the command execution timeout in seconds.
	DefaultTimeout = 120
	MinTimeout     = 10
	MaxTimeout     = 600

	// DefaultOllamaHost is the local Ollama endpoint.
	DefaultOllamaHost = "http://localhost:11434"
)

// Settings holds persisted configuration loaded from the YAML settings file
// and environment variables.
type Settings struct {
	Provider string `yaml:"provider" env:"PROVIDER"`
	Model    string `yaml:"model" env:"MODEL"`

	OllamaHost string `yaml:"ollama-host" env:"OLLAMA_HOST"`

	AnthropicAPIKey   string `yaml:"anthropic-api-key" env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey  string `yaml:"openrouter-api-key" env:"OPENROUTER_API_KEY"`
	HuggingFaceAPIKey string `yaml:"huggingface-api-key" env:"HUGGINGFACE_API_KEY"`

	MaxIterations int `yaml:"max-iterations" env:"MAX_ITERATIONS"`
	Timeout       int `yaml:"timeout" env:"TIMEOUT"`

	BlockedCommands []string `yaml:"blocked-commands" env:"BLOCKED_COMMANDS"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		Provider:      "ollama",
		OllamaHost:    DefaultOllamaHost,
		MaxIterations: DefaultMaxIterations,
		Timeout:       DefaultTimeout,
	}
}

// DefaultPath returns the default settings file location,
// ~/.config/coda/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "coda", "config.yml"), nil
}

// Load reads settings from path (or the default location when path is
// empty), applies environment overrides and clamps values into their valid
// ranges. A missing file is not an error; defaults are used.
func Load(path string) (Settings, error) {
	s := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return s, err
		}
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run, defaults only.
	case err != nil:
		return s, fmt.Errorf("read settings file: %w", err)
	default:
		if err := yaml.Unmarshal(content, &s); err != nil {
			return s, fmt.Errorf("parse settings file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return s, fmt.Errorf("parse environment: %w", err)
	}

	s.clamp()
	return s, nil
}

// Save writes the settings to path (or the default location when path is
// empty), creating parent directories as needed.
func (s Settings) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	content, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// APIKey returns the configured API key for a provider, empty when none is
// set or the provider needs no key.
func (s Settings) APIKey(provider string) string {
	switch provider {
	case "anthropic":
		return s.AnthropicAPIKey
	case "openrouter":
		return s.OpenRouterAPIKey
	case "huggingface":
		return s.HuggingFaceAPIKey
	default:
		return ""
	}
}

func (s *Settings) clamp() {
	if s.MaxIterations < MinMaxIterations {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.MaxIterations > MaxMaxIterations {
		s.MaxIterations = MaxMaxIterations
	}
	if s.Timeout < MinTimeout {
		s.Timeout = DefaultTimeout
	}
	if s.Timeout > MaxTimeout {
		s.Timeout = MaxTimeout
	}
	if s.Provider == "" {
		s.Provider = Default().Provider
	}
	if s.OllamaHost == "" {
		s.OllamaHost = DefaultOllamaHost
	}
}
