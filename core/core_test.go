package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	sys := System("be helpful")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, "be helpful", sys.Content)
	assert.Empty(t, sys.ToolCalls)
	assert.Empty(t, sys.ToolCallID)

	usr := User("hello")
	assert.Equal(t, RoleUser, usr.Role)
	assert.Empty(t, usr.ToolCalls)

	calls := []ToolCall{{ID: "call_1", Name: "bash", Arguments: map[string]any{"command": "ls"}}}
	asst := Assistant("working on it", calls)
	assert.Equal(t, RoleAssistant, asst.Role)
	assert.Len(t, asst.ToolCalls, 1)

	tr := ToolResponse("call_1", "ok")
	assert.Equal(t, RoleTool, tr.Role)
	assert.Equal(t, "call_1", tr.ToolCallID)
	assert.Empty(t, tr.ToolCalls)
}

func TestToolResultMessage(t *testing.T) {
	res := ToolResult{ToolCallID: "call_9", Content: "Error: nope", IsError: true}
	msg := res.Message()
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "call_9", msg.ToolCallID)
	assert.Equal(t, "Error: nope", msg.Content)
}

func TestLLMResponseFinality(t *testing.T) {
	final := LLMResponse{Content: "Done"}
	assert.False(t, final.HasToolCalls())

	withCalls := LLMResponse{ToolCalls: []ToolCall{{ID: "c1", Name: "ls"}}}
	assert.True(t, withCalls.HasToolCalls())
}

func TestToolCallWireRoundTrip(t *testing.T) {
	orig := ToolCall{
		ID:   "call_abc",
		Name: "write_file",
		Arguments: map[string]any{
			"file_path": "main.go",
			"content":   "package main",
		},
	}

	wire := orig.Wire()
	assert.Equal(t, "function", wire.Type)

	// Survive an actual serialization pass, not just struct copying.
	b, err := json.Marshal(wire)
	require.NoError(t, err)
	var parsed WireToolCall
	require.NoError(t, json.Unmarshal(b, &parsed))

	back := ToolCallFromWire(parsed)
	assert.Equal(t, orig.ID, back.ID)
	assert.Equal(t, orig.Name, back.Name)
	assert.Equal(t, orig.Arguments, back.Arguments)
}

func TestToolCallWireNilArguments(t *testing.T) {
	wire := ToolCall{ID: "c", Name: "ls"}.Wire()
	assert.NotNil(t, wire.Function.Arguments)

	back := ToolCallFromWire(WireToolCall{ID: "c", Type: "function"})
	assert.NotNil(t, back.Arguments)
}

func TestMessageWireOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(User("hi").Wire())
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "user", m["role"])
	assert.NotContains(t, m, "tool_calls")
	assert.NotContains(t, m, "tool_call_id")
	assert.NotContains(t, m, "name")

	calls := []ToolCall{{ID: "c1", Name: "bash", Arguments: map[string]any{"command": "pwd"}}}
	b, err = json.Marshal(Assistant("", calls).Wire())
	require.NoError(t, err)
	m = map[string]any{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "content")
	assert.Contains(t, m, "tool_calls")
}

func TestWireHistoryPreservesOrder(t *testing.T) {
	history := []Message{System("s"), User("u"), Assistant("a", nil)}
	wire := WireHistory(history)
	require.Len(t, wire, 3)
	assert.Equal(t, "system", wire[0].Role)
	assert.Equal(t, "user", wire[1].Role)
	assert.Equal(t, "assistant", wire[2].Role)
}
