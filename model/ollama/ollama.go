// Package ollama provides a model.Provider for a local Ollama server
// (https://ollama.ai) through its OpenAI-compatible endpoint. No credential
// is needed; a placeholder key satisfies the SDK.
package ollama

import (
	"strings"

	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/model/openaicompat"
)

// DefaultHost is the standard local Ollama address.
const DefaultHost = "http://localhost:11434"

// DefaultModel is used when no model is configured.
const DefaultModel = "qwen2.5-coder:7b"

// RecommendedModels are local models with good tool-calling support.
var RecommendedModels = []string{
	"qwen2.5-coder:7b",
	"qwen2.5-coder:14b",
	"qwen2.5-coder:32b",
	"qwen2.5:7b",
	"qwen2.5:14b",
	"llama3.1:8b",
	"llama3.1:70b",
	"mistral:7b",
	"mixtral:8x7b",
	"deepseek-coder-v2:16b",
	"codellama:7b",
	"codellama:13b",
}

func init() {
	model.RegisterProvider("ollama", func(cfg model.Config) (model.Provider, error) {
		return New(cfg)
	})
}

// New creates an Ollama provider pointed at cfg.Host (DefaultHost when
// empty).
func New(cfg model.Config) (*openaicompat.Client, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}

	return openaicompat.New(openaicompat.Options{
		Name:         "ollama",
		BaseURL:      strings.TrimSuffix(host, "/") + "/v1",
		APIKey:       "ollama", // the endpoint ignores it, the SDK requires it
		Model:        cfg.Model,
		DefaultModel: DefaultModel,
		Models:       RecommendedModels,
		Timeout:      cfg.Timeout,
		MapError:     mapNotFound,
	}), nil
}

// mapNotFound surfaces Ollama's 404 for an unpulled model as the dedicated
// error so callers can suggest `ollama pull`.
func mapNotFound(err error, modelID string) error {
	apiErr, ok := err.(*model.APIError)
	if !ok {
		return err
	}
	if apiErr.StatusCode == 404 || strings.Contains(strings.ToLower(apiErr.Message), "not found") {
		return &model.ModelNotFoundError{Model: modelID, Provider: "ollama"}
	}
	return err
}
