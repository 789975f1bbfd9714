// Package tool implements the capability subsystem: the contract a tool must
// satisfy, the declarative parameter schema exported to models for function
// calling, and a registry with uniform error containment so a failing tool
// never takes down the agent loop.
package tool

import (
	"fmt"

	"github.com/coda-agent/coda/core"
)

// Parameter declares one argument a tool accepts. The declared type is a
// JSON Schema primitive ("string", "integer", "number", "boolean", "array",
// "object").
type Parameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     any
	Enum        []any
}

// Tool is a self-describing capability the agent can execute on behalf of
// the model.
//
// Implementations should:
//   - Use unique, snake_case names
//   - Describe themselves in terms a model can act on
//   - Return a plain-text result from Execute, or an *ExecutionError on
//     failure
//
// A Tool must be safe for sequential reuse; the loop never runs two
// executions of the same registry concurrently.
type Tool interface {
	// Name returns the unique identifier used in function call declarations.
	Name() string

	// Description returns the natural language description shown to models.
	Description() string

	// Parameters returns the declared arguments, used solely to build the
	// function-calling schema.
	Parameters() []Parameter

	// Execute runs the tool with arguments parsed from the model's call.
	Execute(args map[string]any) (string, error)
}

// Schema builds the function-calling schema for a tool:
// {type: "function", function: {name, description, parameters}}.
func Schema(t Tool) core.ToolSchema {
	properties := map[string]any{}
	required := []string{}

	for _, p := range t.Parameters() {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	return core.ToolSchema{
		Type: "function",
		Function: core.FunctionSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

// ExecutionError is the domain error a tool returns when it fails for a
// reason the model can act on (bad arguments, missing file, timeout).
type ExecutionError struct {
	Tool   string
	Reason string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool '%s' failed: %s", e.Tool, e.Reason)
}

// NewExecutionError creates an ExecutionError for the named tool.
func NewExecutionError(tool, format string, args ...any) *ExecutionError {
	return &ExecutionError{Tool: tool, Reason: fmt.Sprintf(format, args...)}
}

// DuplicateError is returned by Register when the name is already taken.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("tool '%s' is already registered", e.Name)
}

// NotFoundError is returned by Get when no tool has the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool '%s' is not registered", e.Name)
}
