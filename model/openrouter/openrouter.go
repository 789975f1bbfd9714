// Package openrouter provides a model.Provider for OpenRouter's unified API
// (https://openrouter.ai), which fronts models from many vendors behind one
// OpenAI-compatible endpoint.
package openrouter

import (
	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/model/openaicompat"
)

// BaseURL is OpenRouter's OpenAI-compatible endpoint.
const BaseURL = "https://openrouter.ai/api/v1"

// DefaultModel is used when no model is configured.
const DefaultModel = "deepseek/deepseek-chat"

// RecommendedModels are popular models with good tool-calling support.
var RecommendedModels = []string{
	"deepseek/deepseek-chat",
	"deepseek/deepseek-coder",
	"anthropic/claude-3.5-sonnet",
	"anthropic/claude-3-haiku",
	"openai/gpt-4o",
	"openai/gpt-4o-mini",
	"google/gemini-pro-1.5",
	"meta-llama/llama-3.1-70b-instruct",
	"meta-llama/llama-3.1-8b-instruct",
	"mistralai/mistral-large",
	"qwen/qwen-2.5-coder-32b-instruct",
}

func init() {
	model.RegisterProvider("openrouter", func(cfg model.Config) (model.Provider, error) {
		return New(cfg)
	})
}

// New creates an OpenRouter provider. An API key is required; get one at
// https://openrouter.ai/keys.
func New(cfg model.Config) (*openaicompat.Client, error) {
	if cfg.APIKey == "" {
		return nil, &model.ConfigError{
			Provider: "openrouter",
			Reason:   "API key is required. Get one at https://openrouter.ai/keys",
		}
	}

	return openaicompat.New(openaicompat.Options{
		Name:         "openrouter",
		BaseURL:      BaseURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		DefaultModel: DefaultModel,
		Models:       RecommendedModels,
		Timeout:      cfg.Timeout,
	}), nil
}
