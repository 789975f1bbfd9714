package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/model/anthropic"
	"github.com/coda-agent/coda/model/huggingface"
	"github.com/coda-agent/coda/model/ollama"
	"github.com/coda-agent/coda/model/openrouter"
)

type providerInfo struct {
	name         string
	description  string
	needsKey     bool
	defaultModel string
	models       []string
}

func providerCatalog() map[string]providerInfo {
	return map[string]providerInfo{
		"ollama": {
			name:         "Ollama (Local)",
			description:  "Run models locally. Free & private.",
			defaultModel: ollama.DefaultModel,
			models:       ollama.RecommendedModels,
		},
		"openrouter": {
			name:         "OpenRouter (Cloud)",
			description:  "Access many models via API.",
			needsKey:     true,
			defaultModel: openrouter.DefaultModel,
			models:       openrouter.RecommendedModels,
		},
		"huggingface": {
			name:         "HuggingFace (Cloud)",
			description:  "HuggingFace Inference API.",
			needsKey:     true,
			defaultModel: huggingface.DefaultModel,
			models:       huggingface.RecommendedModels,
		},
		"anthropic": {
			name:         "Anthropic (Cloud)",
			description:  "Claude models via the Anthropic API.",
			needsKey:     true,
			defaultModel: anthropic.DefaultModel,
			models:       anthropic.RecommendedModels,
		},
	}
}

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available providers and recommended models",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts)
			if err != nil {
				return err
			}

			catalog := providerCatalog()
			for _, id := range model.Providers() {
				info, ok := catalog[id]
				if !ok {
					continue
				}

				marker := "  "
				if id == settings.Provider {
					marker = okStyle.Render("* ")
				}
				fmt.Println(marker + titleStyle.Render(info.name))
				fmt.Println("  " + dimStyle.Render(info.description))
				if info.needsKey {
					fmt.Println("  " + dimStyle.Render("Requires an API key"))
				}
				for _, m := range info.models {
					line := "    " + m
					if m == info.defaultModel {
						line += dimStyle.Render("  (default)")
					}
					fmt.Println(line)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
