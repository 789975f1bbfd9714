// Package huggingface provides a model.Provider for the HuggingFace
// Inference Providers router (https://huggingface.co/docs/inference-providers),
// which exposes hosted open-source models behind the OpenAI-compatible chat
// surface, including native tool calling.
package huggingface

import (
	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/model/openaicompat"
)

// BaseURL is the inference router's OpenAI-compatible endpoint.
const BaseURL = "https://router.huggingface.co/v1"

// DefaultModel is used when no model is configured.
const DefaultModel = "Qwen/Qwen2.5-Coder-32B-Instruct"

// RecommendedModels are hosted models with good coding and tool support.
var RecommendedModels = []string{
	"Qwen/Qwen2.5-Coder-32B-Instruct",
	"deepseek-ai/DeepSeek-Coder-V2-Instruct",
	"codellama/CodeLlama-34b-Instruct-hf",
	"bigcode/starcoder2-15b-instruct-v0.1",
	"meta-llama/Meta-Llama-3.1-70B-Instruct",
	"mistralai/Mixtral-8x7B-Instruct-v0.1",
	"meta-llama/Meta-Llama-3.1-8B-Instruct",
}

func init() {
	model.RegisterProvider("huggingface", func(cfg model.Config) (model.Provider, error) {
		return New(cfg)
	})
}

// New creates a HuggingFace provider. An API token is required; create one
// at https://huggingface.co/settings/tokens.
func New(cfg model.Config) (*openaicompat.Client, error) {
	if cfg.APIKey == "" {
		return nil, &model.ConfigError{
			Provider: "huggingface",
			Reason:   "API token is required. Create one at https://huggingface.co/settings/tokens",
		}
	}

	return openaicompat.New(openaicompat.Options{
		Name:         "huggingface",
		BaseURL:      BaseURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		DefaultModel: DefaultModel,
		Models:       RecommendedModels,
		Timeout:      cfg.Timeout,
	}), nil
}
