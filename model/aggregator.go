package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coda-agent/coda/core"
)

// partialCall accumulates tool call fragments arriving at one positional
// index until the terminal chunk finalizes them.
type partialCall struct {
	id   string
	name string
	args string
}

// Aggregator reduces an ordered sequence of StreamChunks into output
// equivalent to a single blocking response. Text deltas concatenate in
// arrival order; tool call fragments merge by the positional index the
// backend assigned, finalized only when the terminal chunk is observed.
// Finalized calls are ordered by when their index was first seen, not by
// fragment arrival order.
//
// An Aggregator serves exactly one stream and is not safe for concurrent
// use.
type Aggregator struct {
	content      strings.Builder
	partials     map[int]*partialCall
	order        []int
	final        []core.ToolCall
	finishReason string
	complete     bool
}

// NewAggregator creates an Aggregator for one response stream.
func NewAggregator() *Aggregator {
	return &Aggregator{
		partials: make(map[int]*partialCall),
	}
}

// Add folds one chunk into the accumulated state. Chunks with no content and
// no fragments are valid no-ops.
func (a *Aggregator) Add(chunk core.StreamChunk) {
	a.content.WriteString(chunk.Content)

	for _, d := range chunk.ToolCallDeltas {
		pc, ok := a.partials[d.Index]
		if !ok {
			pc = &partialCall{}
			a.partials[d.Index] = pc
			a.order = append(a.order, d.Index)
		}
		if d.ID != "" {
			pc.id = d.ID
		}
		pc.name += d.Name
		pc.args += d.Arguments
	}

	if chunk.IsComplete {
		a.complete = true
		a.finishReason = chunk.FinishReason
		if len(chunk.ToolCalls) > 0 {
			// The adapter finalized its own buffer; adopt it.
			a.final = chunk.ToolCalls
		} else {
			a.final = a.finalize()
		}
	}
}

// finalize parses the accumulated fragments in first-seen index order.
// Argument text that fails to parse degrades to an empty mapping so one
// malformed call cannot fail the whole turn.
func (a *Aggregator) finalize() []core.ToolCall {
	calls := make([]core.ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		pc := a.partials[idx]

		id := pc.id
		if id == "" {
			id = fmt.Sprintf("call_%d", idx)
		}

		args := map[string]any{}
		if pc.args != "" {
			if err := json.Unmarshal([]byte(pc.args), &args); err != nil {
				args = map[string]any{}
			}
		}

		calls = append(calls, core.ToolCall{ID: id, Name: pc.name, Arguments: args})
	}
	return calls
}

// Complete reports whether the terminal chunk has been observed.
func (a *Aggregator) Complete() bool { return a.complete }

// Response returns the accumulated state as a complete LLMResponse. It is
// meaningful once Complete reports true; before that it reflects a snapshot
// of the text received so far with no tool calls.
func (a *Aggregator) Response() *core.LLMResponse {
	return &core.LLMResponse{
		Content:      a.content.String(),
		ToolCalls:    a.final,
		FinishReason: a.finishReason,
	}
}
