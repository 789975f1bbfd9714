package tool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/coda-agent/coda/core"
	"github.com/coda-agent/coda/logging"
)

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	// WorkingDir, when set, is injected into tool arguments under the
	// "working_dir" key so tools can resolve relative paths.
	WorkingDir string
	// Logger records executions. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Registry is a name-keyed catalog of tools. Registration must not happen
// concurrently with execution; a read-mostly registry may be shared between
// agent instances.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]Tool
	workingDir string
	logger     logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		tools:      make(map[string]Tool),
		workingDir: opts.WorkingDir,
		logger:     opts.Logger,
	}
}

// Register adds a tool. Names match case-sensitively; registering a name
// twice returns a *DuplicateError.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return &DuplicateError{Name: t.Name()}
	}
	r.tools[t.Name()] = t

	return nil
}

// MustRegister registers tools and panics on duplicates. Intended for static
// startup wiring where a duplicate is a programming error.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Unregister removes a tool by name. Removing an unknown name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns the tool with the given name or a *NotFoundError.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return t, nil
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names, sorted for stable output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// SetWorkingDir changes the directory injected into tool arguments.
func (r *Registry) SetWorkingDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workingDir = dir
}

// WorkingDir returns the injected working directory, if any.
func (r *Registry) WorkingDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workingDir
}

// Schemas returns the function-calling schema for every registered tool,
// sorted by tool name. Stability is a courtesy; the model keys on tool
// identity, not order.
func (r *Registry) Schemas() []core.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]core.ToolSchema, 0, len(names))
	for _, name := range names {
		schemas = append(schemas, Schema(r.tools[name]))
	}
	return schemas
}

// ExecuteSafely looks up and runs a tool, containing every failure mode as a
// ToolResult instead of an error. An unknown tool, an *ExecutionError, an
// unexpected error and even a panic inside Execute all become
// ToolResult{IsError: true}; the loop can always feed the result back to the
// model rather than crash the session.
func (r *Registry) ExecuteSafely(name, toolCallID string, args map[string]any) (result core.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool.panic", "tool", name, "panic", fmt.Sprint(rec))
			result = core.ToolResult{
				ToolCallID: toolCallID,
				Content:    fmt.Sprintf("Unexpected error: panic: %v", rec),
				IsError:    true,
			}
		}
	}()

	t, err := r.Get(name)
	if err != nil {
		return core.ToolResult{
			ToolCallID: toolCallID,
			Content:    fmt.Sprintf("Error: %s", err.Error()),
			IsError:    true,
		}
	}

	callArgs := make(map[string]any, len(args)+1)
	for k, v := range args {
		callArgs[k] = v
	}
	if wd := r.WorkingDir(); wd != "" {
		callArgs["working_dir"] = wd
	}

	r.logger.Debug("tool.execute", "tool", name, "call_id", toolCallID)

	out, err := t.Execute(callArgs)
	if err != nil {
		r.logger.Warn("tool.failed", "tool", name, "call_id", toolCallID, "error", err.Error())

		var execErr *ExecutionError
		if errors.As(err, &execErr) {
			return core.ToolResult{
				ToolCallID: toolCallID,
				Content:    fmt.Sprintf("Error: %s", execErr.Reason),
				IsError:    true,
			}
		}
		return core.ToolResult{
			ToolCallID: toolCallID,
			Content:    fmt.Sprintf("Unexpected error: %s", err.Error()),
			IsError:    true,
		}
	}

	return core.ToolResult{
		ToolCallID: toolCallID,
		Content:    out,
		IsError:    false,
	}
}
