// Package model defines the contract the agent loop uses to talk to language
// model backends: a Provider interface with blocking and streaming
// generation, a shared retry policy for transient backend failures, the
// streaming Aggregator that reduces chunk sequences to complete responses,
// and the error taxonomy adapters report.
//
// Concrete adapters live in subpackages and register themselves with the
// provider factory in their init functions, so importers select backends
// with blank imports:
//
//	import (
//		_ "github.com/coda-agent/coda/model/ollama"
//		_ "github.com/coda-agent/coda/model/openrouter"
//	)
package model

import (
	"context"

	"github.com/coda-agent/coda/core"
)

// Provider is the interface the agent loop uses to obtain responses from a
// backend. Implementations vary per vendor but conform to one contract.
type Provider interface {
	// Name returns the provider identifier ("ollama", "openrouter", ...).
	Name() string

	// Model returns the model identifier in use.
	Model() string

	// Chat performs one blocking round trip and returns the complete
	// response.
	Chat(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (*core.LLMResponse, error)

	// Stream performs one round trip delivering the response incrementally.
	// The chunk channel is closed after the terminal chunk (or on error);
	// the error channel delivers at most one error. Adapters without native
	// streaming fall back to a single Chat call yielded as one terminal
	// chunk (see FallbackStream).
	Stream(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (<-chan core.StreamChunk, <-chan error)

	// SupportsStreaming reports whether Stream delivers true incremental
	// output rather than the single-chunk fallback.
	SupportsStreaming() bool

	// SupportsTools reports whether the backend accepts function-calling
	// schemas.
	SupportsTools() bool

	// DefaultModel returns the model used when none is configured.
	DefaultModel() string

	// ListModels returns recommended models for this provider.
	ListModels() []string
}

// FallbackStream adapts a blocking Chat call into the streaming contract:
// one terminal chunk carrying the full content and any tool calls. It is the
// default Stream implementation for adapters without native streaming
// support.
func FallbackStream(
	ctx context.Context,
	p Provider,
	messages []core.Message,
	tools []core.ToolSchema,
) (<-chan core.StreamChunk, <-chan error) {
	out := make(chan core.StreamChunk, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		resp, err := p.Chat(ctx, messages, tools)
		if err != nil {
			errCh <- err
			return
		}

		out <- core.StreamChunk{
			Content:      resp.Content,
			ToolCalls:    resp.ToolCalls,
			IsComplete:   true,
			FinishReason: resp.FinishReason,
		}
	}()

	return out, errCh
}
