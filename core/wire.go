package core

// Wire records are the backend-neutral JSON shapes exchanged with model
// adapters. Tool calls travel in both directions (model issuing calls,
// conversation replaying them) so the conversion must round-trip exactly.

// WireFunction is the function target inside a wire tool call.
type WireFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// WireToolCall is the wire form of a ToolCall:
// {id, type: "function", function: {name, arguments}}.
type WireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function WireFunction `json:"function"`
}

// WireMessage is the wire form of a Message. Optional fields are omitted
// when absent.
type WireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []WireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

// Wire converts the call to its wire form.
func (tc ToolCall) Wire() WireToolCall {
	args := tc.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return WireToolCall{
		ID:   tc.ID,
		Type: "function",
		Function: WireFunction{
			Name:      tc.Name,
			Arguments: args,
		},
	}
}

// ToolCallFromWire parses a wire tool call back into a ToolCall.
// Wire -> ToolCall -> Wire preserves id, name and arguments.
func ToolCallFromWire(w WireToolCall) ToolCall {
	args := w.Function.Arguments
	if args == nil {
		args = map[string]any{}
	}
	return ToolCall{
		ID:        w.ID,
		Name:      w.Function.Name,
		Arguments: args,
	}
}

// Wire converts the message to its wire form.
func (m Message) Wire() WireMessage {
	wm := WireMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
		Name:       m.Name,
	}
	if len(m.ToolCalls) > 0 {
		wm.ToolCalls = make([]WireToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			wm.ToolCalls[i] = tc.Wire()
		}
	}
	return wm
}

// WireHistory converts a conversation into wire form, preserving order.
func WireHistory(messages []Message) []WireMessage {
	out := make([]WireMessage, len(messages))
	for i, m := range messages {
		out[i] = m.Wire()
	}
	return out
}
