// Package anthropic provides a model.Provider for the Anthropic Messages
// API. The adapter is non-streaming; Stream falls back to one blocking call
// yielded as a single terminal chunk.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/coda-agent/coda/core"
	"github.com/coda-agent/coda/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = string(sdk.ModelClaude3_5Sonnet20241022)

// RecommendedModels are current models with tool support.
var RecommendedModels = []string{
	string(sdk.ModelClaude3_5Sonnet20241022),
	string(sdk.ModelClaude3_5HaikuLatest),
	string(sdk.ModelClaude3OpusLatest),
}

const defaultMaxTokens = 4096

func init() {
	model.RegisterProvider("anthropic", func(cfg model.Config) (model.Provider, error) {
		return New(cfg)
	})
}

// Provider wraps the Anthropic Messages API behind model.Provider.
type Provider struct {
	client    sdk.Client
	model     string
	maxTokens int64
	retry     model.RetryPolicy
}

// New creates an Anthropic provider. An API key is required.
func New(cfg model.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &model.ConfigError{
			Provider: "anthropic",
			Reason:   "API key is required. Get one at https://console.anthropic.com",
		}
	}

	m := cfg.Model
	if m == "" {
		m = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Provider{
		client:    sdk.NewClient(opts...),
		model:     m,
		maxTokens: defaultMaxTokens,
		retry:     model.DefaultRetryPolicy,
	}, nil
}

// Name implements model.Provider.
func (p *Provider) Name() string { return "anthropic" }

// Model implements model.Provider.
func (p *Provider) Model() string { return p.model }

// SupportsStreaming implements model.Provider.
func (p *Provider) SupportsStreaming() bool { return false }

// SupportsTools implements model.Provider.
func (p *Provider) SupportsTools() bool { return true }

// DefaultModel implements model.Provider.
func (p *Provider) DefaultModel() string { return DefaultModel }

// ListModels implements model.Provider.
func (p *Provider) ListModels() []string { return RecommendedModels }

// Chat implements model.Provider.
func (p *Provider) Chat(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (*core.LLMResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  buildMessages(messages),
	}
	if system := systemBlocks(messages); len(system) > 0 {
		params.System = system
	}
	if len(tools) > 0 {
		params.Tools = buildTools(tools)
	}

	resp, err := model.Retry(ctx, p.retry, retryable, func() (*sdk.Message, error) {
		return p.client.Messages.New(ctx, params)
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	return parseMessage(resp), nil
}

// Stream implements model.Provider via the single-chunk fallback.
func (p *Provider) Stream(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (<-chan core.StreamChunk, <-chan error) {
	return model.FallbackStream(ctx, p, messages, tools)
}

// systemBlocks collects system message content; the Messages API takes it as
// a top-level field rather than a message.
func systemBlocks(messages []core.Message) []sdk.TextBlockParam {
	var blocks []sdk.TextBlockParam
	for _, m := range messages {
		if m.Role == core.RoleSystem && m.Content != "" {
			blocks = append(blocks, sdk.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

// buildMessages converts the conversation. Tool results become tool_result
// blocks in a user message immediately following the assistant turn that
// issued the calls, as the Messages API requires.
func buildMessages(messages []core.Message) []sdk.MessageParam {
	var out []sdk.MessageParam

	for _, m := range messages {
		switch m.Role {
		case core.RoleUser:
			if m.Content != "" {
				out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
			}
		case core.RoleAssistant:
			var blocks []sdk.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := tc.Arguments
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, args, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewAssistantMessage(blocks...))
			}
		case core.RoleTool:
			out = append(out, sdk.NewUserMessage(sdk.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}

	return out
}

func buildTools(tools []core.ToolSchema) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, len(tools))

	for i, ts := range tools {
		schema := sdk.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if props, ok := ts.Function.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := ts.Function.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		out[i] = sdk.ToolUnionParamOfTool(schema, ts.Function.Name)
	}

	return out
}

func parseMessage(resp *sdk.Message) *core.LLMResponse {
	var content string
	var calls []core.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			content += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			args := map[string]any{}
			if tu.Input != nil {
				if b, err := json.Marshal(tu.Input); err == nil {
					if err := json.Unmarshal(b, &args); err != nil {
						args = map[string]any{}
					}
				}
			}
			calls = append(calls, core.ToolCall{ID: tu.ID, Name: tu.Name, Arguments: args})
		}
	}

	finish := "stop"
	if resp.StopReason != "" {
		finish = string(resp.StopReason)
	}

	return &core.LLMResponse{
		Content:      content,
		ToolCalls:    calls,
		FinishReason: finish,
	}
}

func retryable(err error) bool {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		return model.RetryableStatus(apierr.StatusCode)
	}
	return true
}

func (p *Provider) mapError(err error) error {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == 404 {
			return &model.ModelNotFoundError{Model: p.model, Provider: "anthropic"}
		}
		return &model.APIError{
			Provider:   "anthropic",
			Message:    apierr.Error(),
			StatusCode: apierr.StatusCode,
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &model.APIError{Provider: "anthropic", Message: err.Error()}
}
