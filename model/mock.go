package model

import (
	"context"
	"sync"

	"github.com/coda-agent/coda/core"
)

// MockProvider is a lightweight in-memory Provider for tests and examples.
// It replays a scripted sequence of responses: each Chat or Stream call
// consumes the next response, and the last one repeats once the script is
// exhausted. Stream delivers content rune by rune followed by a terminal
// chunk carrying the scripted tool calls.
type MockProvider struct {
	mu        sync.Mutex
	model     string
	responses []*core.LLMResponse
	err       error
	calls     int

	// Requests records the message history passed to each call, for
	// assertions on what the loop sent.
	Requests [][]core.Message
}

// NewMockProvider creates a MockProvider replaying the given responses.
func NewMockProvider(responses ...*core.LLMResponse) *MockProvider {
	return &MockProvider{
		model:     "mock-model",
		responses: responses,
	}
}

// FailWith makes every subsequent call return err.
func (m *MockProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many generation calls have been made.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProvider) next(messages []core.Message) (*core.LLMResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := make([]core.Message, len(messages))
	copy(history, messages)
	m.Requests = append(m.Requests, history)

	idx := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &core.LLMResponse{Content: "mock response", FinishReason: "stop"}, nil
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// Chat implements Provider.
func (m *MockProvider) Chat(_ context.Context, messages []core.Message, _ []core.ToolSchema) (*core.LLMResponse, error) {
	return m.next(messages)
}

// Stream implements Provider.
func (m *MockProvider) Stream(ctx context.Context, messages []core.Message, _ []core.ToolSchema) (<-chan core.StreamChunk, <-chan error) {
	out := make(chan core.StreamChunk, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		resp, err := m.next(messages)
		if err != nil {
			errCh <- err
			return
		}

		for _, r := range resp.Content {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- core.StreamChunk{Content: string(r)}:
			}
		}

		out <- core.StreamChunk{
			ToolCalls:    resp.ToolCalls,
			IsComplete:   true,
			FinishReason: resp.FinishReason,
		}
	}()

	return out, errCh
}

// Name implements Provider.
func (m *MockProvider) Name() string { return "mock" }

// Model implements Provider.
func (m *MockProvider) Model() string { return m.model }

// SupportsStreaming implements Provider.
func (m *MockProvider) SupportsStreaming() bool { return true }

// SupportsTools implements Provider.
func (m *MockProvider) SupportsTools() bool { return true }

// DefaultModel implements Provider.
func (m *MockProvider) DefaultModel() string { return "mock-model" }

// ListModels implements Provider.
func (m *MockProvider) ListModels() []string { return []string{"mock-model"} }
