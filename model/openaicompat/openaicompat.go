// Package openaicompat implements model.Provider against any backend that
// speaks the OpenAI Chat Completions API, including streaming and
// function/tool calling. OpenRouter, Ollama and HuggingFace all expose this
// surface, so their adapters are thin configurations of this one client.
package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/coda-agent/coda/core"
	"github.com/coda-agent/coda/model"
)

// Options configure a compat client for one concrete backend.
type Options struct {
	// Name is the provider identifier used in errors ("openrouter", ...).
	Name string
	// BaseURL is the backend's OpenAI-compatible endpoint.
	BaseURL string
	// APIKey authenticates the backend. Local backends may use a dummy key.
	APIKey string
	// Model is the model to use; falls back to DefaultModel when empty.
	Model string
	// DefaultModel is the provider's default model.
	DefaultModel string
	// Models is the provider's recommended model list.
	Models []string
	// Retry bounds transient-failure retries for blocking calls.
	Retry model.RetryPolicy
	// Timeout bounds one round trip. Zero keeps the SDK default.
	Timeout time.Duration
	// MapError optionally refines backend errors (e.g. a 404 into
	// model.ModelNotFoundError). It runs after the generic classification.
	MapError func(err error, modelID string) error
}

// Client is an OpenAI-compatible model.Provider.
type Client struct {
	client openai.Client
	opts   Options
	model  string
}

// New creates a compat client. The API key requirement is the concrete
// adapter's decision; this constructor only wires the transport.
func New(opts Options) *Client {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = model.DefaultRetryPolicy
	}

	m := opts.Model
	if m == "" {
		m = opts.DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithBaseURL(opts.BaseURL),
		option.WithAPIKey(opts.APIKey),
		// The SDK has its own retry layer; ours implements the documented
		// backoff policy, so disable the built-in one.
		option.WithMaxRetries(0),
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &Client{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
		model:  m,
	}
}

// Name implements model.Provider.
func (c *Client) Name() string { return c.opts.Name }

// Model implements model.Provider.
func (c *Client) Model() string { return c.model }

// SupportsStreaming implements model.Provider.
func (c *Client) SupportsStreaming() bool { return true }

// SupportsTools implements model.Provider.
func (c *Client) SupportsTools() bool { return true }

// DefaultModel implements model.Provider.
func (c *Client) DefaultModel() string { return c.opts.DefaultModel }

// ListModels implements model.Provider.
func (c *Client) ListModels() []string { return c.opts.Models }

// Chat implements model.Provider with the shared bounded retry policy.
func (c *Client) Chat(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (*core.LLMResponse, error) {
	params := c.buildParams(messages, tools)

	resp, err := model.Retry(ctx, c.opts.Retry, retryable, func() (*openai.ChatCompletion, error) {
		return c.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return nil, c.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &model.APIError{Provider: c.opts.Name, Message: "no choices returned"}
	}

	return parseCompletion(resp), nil
}

// Stream implements model.Provider. Text deltas are forwarded as they
// arrive; tool call deltas are forwarded as indexed fragments and also
// buffered so the terminal chunk carries the finalized calls.
func (c *Client) Stream(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (<-chan core.StreamChunk, <-chan error) {
	out := make(chan core.StreamChunk, 32)
	errCh := make(chan error, 1)

	params := c.buildParams(messages, tools)

	go func() {
		defer close(out)
		defer close(errCh)

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		agg := model.NewAggregator()

		for stream.Next() {
			ck := stream.Current()
			for _, choice := range ck.Choices {
				var chunk core.StreamChunk

				chunk.Content = choice.Delta.Content
				for _, tc := range choice.Delta.ToolCalls {
					chunk.ToolCallDeltas = append(chunk.ToolCallDeltas, core.ToolCallDelta{
						Index:     int(tc.Index),
						ID:        tc.ID,
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					})
				}

				if choice.FinishReason != "" {
					chunk.IsComplete = true
					chunk.FinishReason = choice.FinishReason
					agg.Add(chunk)
					chunk.ToolCalls = agg.Response().ToolCalls
				} else {
					agg.Add(chunk)
				}

				if chunk.Content == "" && len(chunk.ToolCallDeltas) == 0 && !chunk.IsComplete {
					continue
				}

				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- chunk:
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- c.mapError(err)
		}
	}()

	return out, errCh
}

// buildParams assembles the request including tool definitions.
func (c *Client) buildParams(messages []core.Message, tools []core.ToolSchema) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: buildMessages(messages),
	}

	if len(tools) > 0 {
		toolParams := make([]openai.ChatCompletionToolParam, len(tools))
		for i, ts := range tools {
			toolParams[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        ts.Function.Name,
					Description: openai.String(ts.Function.Description),
					Parameters:  ts.Function.Parameters,
				},
			}
		}
		params.Tools = toolParams
	}

	return params
}

// buildMessages converts the conversation into SDK message params.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case core.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case core.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{
				ToolCalls: buildToolCalls(m.ToolCalls),
			}
			if m.Content != "" {
				asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(m.Content),
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}

	return out
}

func buildToolCalls(calls []core.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, len(calls))
	for i, tc := range calls {
		out[i] = openai.ChatCompletionMessageToolCallParam{
			ID:   tc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: marshalArgs(tc.Arguments),
			},
		}
	}
	return out
}

func marshalArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// parseArgs decodes a tool call argument string, degrading to an empty
// mapping on malformed JSON.
func parseArgs(s string) map[string]any {
	args := map[string]any{}
	if s == "" {
		return args
	}
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return map[string]any{}
	}
	return args
}

func parseCompletion(resp *openai.ChatCompletion) *core.LLMResponse {
	choice := resp.Choices[0]

	calls := make([]core.ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: parseArgs(tc.Function.Arguments),
		})
	}

	return &core.LLMResponse{
		Content:      choice.Message.Content,
		ToolCalls:    calls,
		FinishReason: string(choice.FinishReason),
	}
}

// retryable classifies SDK errors for the retry helper: authentication and
// malformed-request failures are permanent, everything else (timeouts,
// connection failures, 5xx) is worth another attempt.
func retryable(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return model.RetryableStatus(apierr.StatusCode)
	}
	return true
}

// mapError converts SDK errors into the model error taxonomy, then lets the
// adapter-specific hook refine the result.
func (c *Client) mapError(err error) error {
	mapped := err

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		mapped = &model.APIError{
			Provider:   c.opts.Name,
			Message:    apierr.Message,
			StatusCode: apierr.StatusCode,
		}
	} else if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		mapped = &model.APIError{Provider: c.opts.Name, Message: err.Error()}
	}

	if c.opts.MapError != nil {
		mapped = c.opts.MapError(mapped, c.model)
	}
	return mapped
}
