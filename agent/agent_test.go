package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coda-agent/coda/core"
	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/tool"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "Echoes its input back." }
func (echoTool) Parameters() []tool.Parameter {
	return []tool.Parameter{{Name: "text", Type: "string", Description: "Text to echo.", Required: true}}
}

func (echoTool) Execute(args map[string]any) (string, error) {
	text, _ := args["text"].(string)
	return "echo: " + text, nil
}

type failingTool struct{}

func (failingTool) Name() string                  { return "broken" }
func (failingTool) Description() string           { return "Always fails." }
func (failingTool) Parameters() []tool.Parameter  { return nil }
func (failingTool) Execute(map[string]any) (string, error) {
	return "", tool.NewExecutionError("broken", "disk on fire")
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) OnToolStart(call core.ToolCall) {
	o.events = append(o.events, "start:"+call.Name)
}

func (o *recordingObserver) OnToolEnd(result core.ToolResult) {
	o.events = append(o.events, "end:"+result.ToolCallID)
}

func newRegistry(t *testing.T, tools ...tool.Tool) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry()
	for _, tl := range tools {
		require.NoError(t, r.Register(tl))
	}
	return r
}

func toolCallResponse(id, name string, args map[string]any) *core.LLMResponse {
	return &core.LLMResponse{
		ToolCalls:    []core.ToolCall{{ID: id, Name: name, Arguments: args}},
		FinishReason: "tool_calls",
	}
}

func TestNewStartsWithSystemMessage(t *testing.T) {
	a := New(model.NewMockProvider(), newRegistry(t), "/tmp/work")

	msgs := a.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "/tmp/work")
}

func TestRunFinalResponseWithoutTools(t *testing.T) {
	provider := model.NewMockProvider(&core.LLMResponse{Content: "Hello!", FinishReason: "stop"})
	a := New(provider, newRegistry(t), t.TempDir())

	out, err := a.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", out)

	msgs := a.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, "hi", msgs[1].Content)
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "Hello!", msgs[2].Content)
	assert.Equal(t, 1, provider.Calls())
}

func TestRunExecutesToolThenFinishes(t *testing.T) {
	provider := model.NewMockProvider(
		toolCallResponse("call_1", "echo", map[string]any{"text": "ping"}),
		&core.LLMResponse{Content: "Done", FinishReason: "stop"},
	)
	a := New(provider, newRegistry(t, echoTool{}), t.TempDir(), func(o *Options) {
		o.MaxIterations = 5
	})

	out, err := a.Run(context.Background(), "echo ping")
	require.NoError(t, err)
	assert.Equal(t, "Done", out)

	msgs := a.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, core.RoleTool, msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
	assert.Equal(t, "echo: ping", msgs[3].Content)
	assert.Equal(t, core.RoleAssistant, msgs[4].Role)

	// Second request must include the tool result.
	require.Len(t, provider.Requests, 2)
	last := provider.Requests[1][len(provider.Requests[1])-1]
	assert.Equal(t, core.RoleTool, last.Role)
}

func TestRunMaxIterationsExceeded(t *testing.T) {
	provider := model.NewMockProvider(toolCallResponse("call_1", "echo", map[string]any{"text": "again"}))
	a := New(provider, newRegistry(t, echoTool{}), t.TempDir(), func(o *Options) {
		o.MaxIterations = 1
	})

	_, err := a.Run(context.Background(), "loop forever")

	var maxErr *MaxIterationsError
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, 1, maxErr.Limit)

	// The user turn, the assistant tool request, and the tool result all
	// remain in history.
	msgs := a.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
	assert.Equal(t, core.RoleTool, msgs[3].Role)
}

func TestRunNoErrorWhenFinalIterationIsToolFree(t *testing.T) {
	provider := model.NewMockProvider(
		toolCallResponse("call_1", "echo", map[string]any{"text": "once"}),
		&core.LLMResponse{Content: "Finished", FinishReason: "stop"},
	)
	a := New(provider, newRegistry(t, echoTool{}), t.TempDir(), func(o *Options) {
		o.MaxIterations = 2
	})

	out, err := a.Run(context.Background(), "do it")
	require.NoError(t, err)
	assert.Equal(t, "Finished", out)
}

func TestRunContainsToolFailures(t *testing.T) {
	provider := model.NewMockProvider(
		toolCallResponse("call_1", "broken", nil),
		&core.LLMResponse{Content: "Recovered", FinishReason: "stop"},
	)
	a := New(provider, newRegistry(t, failingTool{}), t.TempDir())

	out, err := a.Run(context.Background(), "try it")
	require.NoError(t, err)
	assert.Equal(t, "Recovered", out)

	msgs := a.Messages()
	assert.Equal(t, "Error: disk on fire", msgs[3].Content)
}

func TestRunUnknownToolProducesErrorResult(t *testing.T) {
	provider := model.NewMockProvider(
		toolCallResponse("call_1", "missing", nil),
		&core.LLMResponse{Content: "Ok", FinishReason: "stop"},
	)
	a := New(provider, newRegistry(t), t.TempDir())

	_, err := a.Run(context.Background(), "call something")
	require.NoError(t, err)

	msgs := a.Messages()
	assert.Contains(t, msgs[3].Content, "missing")
}

func TestRunProviderErrorLeavesConversationUsable(t *testing.T) {
	provider := model.NewMockProvider()
	provider.FailWith(errors.New("upstream down"))
	a := New(provider, newRegistry(t), t.TempDir())

	_, err := a.Run(context.Background(), "hi")
	require.Error(t, err)

	// The user message stays; a later turn can retry.
	msgs := a.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
}

type cancelingTool struct {
	cancel context.CancelFunc
}

func (*cancelingTool) Name() string                 { return "halt" }
func (*cancelingTool) Description() string          { return "Cancels the turn." }
func (*cancelingTool) Parameters() []tool.Parameter { return nil }

func (t *cancelingTool) Execute(map[string]any) (string, error) {
	t.cancel()
	return "halted", nil
}

type countingTool struct {
	runs int
}

func (*countingTool) Name() string                 { return "count" }
func (*countingTool) Description() string          { return "Counts executions." }
func (*countingTool) Parameters() []tool.Parameter { return nil }

func (t *countingTool) Execute(map[string]any) (string, error) {
	t.runs++
	return "counted", nil
}

func TestRunStopsBetweenToolsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	second := &countingTool{}
	provider := model.NewMockProvider(&core.LLMResponse{
		ToolCalls: []core.ToolCall{
			{ID: "call_1", Name: "halt", Arguments: map[string]any{}},
			{ID: "call_2", Name: "count", Arguments: map[string]any{}},
		},
		FinishReason: "tool_calls",
	})
	a := New(provider, newRegistry(t, &cancelingTool{cancel: cancel}, second), t.TempDir())

	_, err := a.Run(ctx, "go")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, second.runs)

	// The first tool's result is recorded; the second never runs and
	// leaves no message behind.
	msgs := a.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleTool, msgs[3].Role)
	assert.Equal(t, "halted", msgs[3].Content)
}

func TestObserverOrdering(t *testing.T) {
	provider := model.NewMockProvider(
		toolCallResponse("call_1", "echo", map[string]any{"text": "x"}),
		&core.LLMResponse{Content: "Done", FinishReason: "stop"},
	)
	obs := &recordingObserver{}
	a := New(provider, newRegistry(t, echoTool{}), t.TempDir(), func(o *Options) {
		o.Observer = obs
	})

	_, err := a.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"start:echo", "end:call_1"}, obs.events)
}

func TestResetKeepsSystemMessage(t *testing.T) {
	provider := model.NewMockProvider(&core.LLMResponse{Content: "Hi", FinishReason: "stop"})
	a := New(provider, newRegistry(t), "/tmp/work")

	_, err := a.Run(context.Background(), "hello")
	require.NoError(t, err)
	require.Greater(t, len(a.Messages()), 1)

	a.Reset()
	msgs := a.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
}

func TestStreamConcatenatesToFinalResponse(t *testing.T) {
	provider := model.NewMockProvider(&core.LLMResponse{Content: "Hello world", FinishReason: "stop"})
	a := New(provider, newRegistry(t), t.TempDir())

	chunks, errCh := a.Stream(context.Background(), "hi")

	var sb strings.Builder
	for c := range chunks {
		sb.WriteString(c)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "Hello world", sb.String())

	msgs := a.Messages()
	assert.Equal(t, "Hello world", msgs[len(msgs)-1].Content)
}

func TestStreamRunsToolsBetweenIterations(t *testing.T) {
	provider := model.NewMockProvider(
		toolCallResponse("call_1", "echo", map[string]any{"text": "ping"}),
		&core.LLMResponse{Content: "Done", FinishReason: "stop"},
	)
	a := New(provider, newRegistry(t, echoTool{}), t.TempDir())

	chunks, errCh := a.Stream(context.Background(), "echo ping")

	var sb strings.Builder
	for c := range chunks {
		sb.WriteString(c)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "Done", sb.String())

	msgs := a.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "echo: ping", msgs[3].Content)
}

func TestStreamMaxIterationsExceeded(t *testing.T) {
	provider := model.NewMockProvider(toolCallResponse("call_1", "echo", map[string]any{"text": "x"}))
	a := New(provider, newRegistry(t, echoTool{}), t.TempDir(), func(o *Options) {
		o.MaxIterations = 2
	})

	chunks, errCh := a.Stream(context.Background(), "loop")
	for range chunks {
	}

	var maxErr *MaxIterationsError
	require.ErrorAs(t, <-errCh, &maxErr)
	assert.Equal(t, 2, maxErr.Limit)
}
