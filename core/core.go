// Package core defines the conversation data model shared by the agent loop,
// the tool subsystem and the model adapters: roles, messages, tool calls and
// results, model responses and streaming chunks. Values are treated as
// immutable after construction; the role-specific constructors enforce the
// fields each message kind requires.
package core

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks the instruction message installed at index 0 of every conversation.
	RoleSystem Role = "system"
	// RoleUser marks messages supplied by the caller.
	RoleUser Role = "user"
	// RoleAssistant marks model output, including tool call requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks tool results fed back to the model.
	RoleTool Role = "tool"
)

// ToolCall is a model-issued request to invoke a named capability.
// Instances are created by model adapters (parsed from backend output) or by
// the streaming Aggregator and are never mutated afterwards.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of executing a single ToolCall, linked by ID.
// Exactly one ToolResult is produced per executed call.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}

// Message is one entry in a conversation. A message with RoleTool always
// carries ToolCallID and never ToolCalls; system and user messages carry
// neither.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// System creates a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User creates a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant creates an assistant message, optionally carrying tool calls.
func Assistant(content string, toolCalls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// ToolResponse creates a tool result message keyed to the originating call.
func ToolResponse(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// Message converts the result into the tool message appended to the conversation.
func (r ToolResult) Message() Message {
	return ToolResponse(r.ToolCallID, r.Content)
}

// LLMResponse is a complete model turn: optional text plus any tool calls the
// model requested. A response is final iff it carries no tool calls.
type LLMResponse struct {
	Content      string     `json:"content,omitempty"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// HasToolCalls reports whether the model requested any tool executions.
func (r *LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// ToolCallDelta is one streamed fragment of a tool call. Fragments for the
// same call share the positional Index assigned by the backend; Name and
// Arguments arrive as partial strings to be appended in order.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// StreamChunk is one incremental fragment of a streamed model response.
// Content and ToolCallDeltas may both be empty, which is a valid no-op.
// ToolCalls is only populated on the terminal chunk (IsComplete true) by
// adapters that finalize their own fragment buffers.
type StreamChunk struct {
	Content        string          `json:"content,omitempty"`
	ToolCallDeltas []ToolCallDelta `json:"tool_call_deltas,omitempty"`
	ToolCalls      []ToolCall      `json:"tool_calls,omitempty"`
	IsComplete     bool            `json:"is_complete"`
	FinishReason   string          `json:"finish_reason,omitempty"`
}

// ToolSchema is the backend-neutral function-calling schema for one tool.
type ToolSchema struct {
	Type     string         `json:"type"` // "function"
	Function FunctionSchema `json:"function"`
}

// FunctionSchema describes an individual function exposed to the model.
// Parameters is a minimal JSON Schema object.
type FunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// MarshalHistory renders a conversation as indented JSON, mainly for
// inspection and export.
func MarshalHistory(messages []Message) (string, error) {
	b, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
