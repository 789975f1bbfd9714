// Package agent implements the orchestration loop that drives a conversation
// between a model provider and a tool registry: append the user turn, ask
// the model, execute any requested tools strictly in order, feed results
// back, and repeat until the model answers without tool calls or the
// iteration budget runs out.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/coda-agent/coda/core"
	"github.com/coda-agent/coda/logging"
	"github.com/coda-agent/coda/model"
	"github.com/coda-agent/coda/tool"
)

// DefaultMaxIterations bounds tool-use iterations per user turn.
const DefaultMaxIterations = 25

// Observer receives synchronous notifications around each tool execution,
// in the order the model requested the calls. Implementations must not
// block for long; the loop waits for them.
type Observer interface {
	OnToolStart(call core.ToolCall)
	OnToolEnd(result core.ToolResult)
}

// MaxIterationsError reports that a turn exhausted its iteration budget
// with every iteration producing tool calls. The conversation keeps all
// messages appended so far; callers may inspect partial progress or Reset.
type MaxIterationsError struct {
	Limit int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("agent exceeded maximum iterations (%d)", e.Limit)
}

// Options configure an Agent.
type Options struct {
	// MaxIterations bounds tool-use iterations per turn.
	MaxIterations int
	// SystemPrompt overrides the default working-directory-aware prompt.
	SystemPrompt string
	// Observer receives tool start/end notifications. Nil disables them.
	Observer Observer
	// Logger records loop activity. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent owns one conversation exclusively. It must not be shared across
// concurrent turns; separate sessions get separate instances (which may
// share a read-mostly tool registry).
type Agent struct {
	provider      model.Provider
	tools         *tool.Registry
	workingDir    string
	maxIterations int
	observer      Observer
	logger        logging.Logger
	messages      []core.Message
}

// New creates an agent whose conversation starts with a single system
// message built from the working directory.
func New(provider model.Provider, tools *tool.Registry, workingDir string, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = SystemPrompt(workingDir)
	}

	return &Agent{
		provider:      provider,
		tools:         tools,
		workingDir:    workingDir,
		maxIterations: opts.MaxIterations,
		observer:      opts.Observer,
		logger:        opts.Logger,
		messages:      []core.Message{core.System(prompt)},
	}
}

// Provider returns the model provider in use.
func (a *Agent) Provider() model.Provider { return a.provider }

// Tools returns the tool registry in use.
func (a *Agent) Tools() *tool.Registry { return a.tools }

// WorkingDir returns the session working directory.
func (a *Agent) WorkingDir() string { return a.workingDir }

// Messages returns a copy of the conversation history.
func (a *Agent) Messages() []core.Message {
	out := make([]core.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Reset truncates the conversation back to the single system message.
func (a *Agent) Reset() {
	a.messages = a.messages[:1]
}

// Run processes one user turn and blocks until the final response.
//
// Tool failures never surface here; they are contained as error results and
// fed back to the model. Only provider errors, context errors and
// *MaxIterationsError cross this boundary, and the conversation stays
// usable after any of them.
func (a *Agent) Run(ctx context.Context, userInput string) (string, error) {
	runID := uuid.NewString()
	a.messages = append(a.messages, core.User(userInput))

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		a.logger.Debug("agent.iteration", "run", runID, "iteration", iteration, "max", a.maxIterations)

		resp, err := a.provider.Chat(ctx, a.messages, a.tools.Schemas())
		if err != nil {
			return "", err
		}

		if !resp.HasToolCalls() {
			a.messages = append(a.messages, core.Assistant(resp.Content, nil))
			return resp.Content, nil
		}

		a.messages = append(a.messages, core.Assistant(resp.Content, resp.ToolCalls))
		if err := a.executeToolCalls(ctx, runID, resp.ToolCalls); err != nil {
			return "", err
		}
	}

	return "", &MaxIterationsError{Limit: a.maxIterations}
}

// Stream processes one user turn, delivering text fragments as they arrive.
// The fragment channel closes when the turn ends; the error channel delivers
// at most one terminal error. Concatenating all fragments of the final
// iteration yields the same text Run would have returned.
func (a *Agent) Stream(ctx context.Context, userInput string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		runID := uuid.NewString()
		a.messages = append(a.messages, core.User(userInput))

		for iteration := 1; iteration <= a.maxIterations; iteration++ {
			a.logger.Debug("agent.iteration", "run", runID, "iteration", iteration, "max", a.maxIterations)

			resp, err := a.streamOnce(ctx, out)
			if err != nil {
				errCh <- err
				return
			}

			if !resp.HasToolCalls() {
				a.messages = append(a.messages, core.Assistant(resp.Content, nil))
				return
			}

			a.messages = append(a.messages, core.Assistant(resp.Content, resp.ToolCalls))
			if err := a.executeToolCalls(ctx, runID, resp.ToolCalls); err != nil {
				errCh <- err
				return
			}
		}

		errCh <- &MaxIterationsError{Limit: a.maxIterations}
	}()

	return out, errCh
}

// streamOnce performs one provider round trip, forwarding text fragments to
// out and aggregating chunks into the equivalent complete response.
func (a *Agent) streamOnce(ctx context.Context, out chan<- string) (*core.LLMResponse, error) {
	chunks, provErr := a.provider.Stream(ctx, a.messages, a.tools.Schemas())
	agg := model.NewAggregator()

	for chunk := range chunks {
		agg.Add(chunk)
		if chunk.Content == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case out <- chunk.Content:
		}
	}

	if err := <-provErr; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return agg.Response(), nil
}

// executeToolCalls runs the calls one at a time, strictly in the order the
// model returned them; later calls may depend on side effects of earlier
// ones. Cancellation is honored only between calls, never mid-tool, so
// partially applied side effects cannot occur.
func (a *Agent) executeToolCalls(ctx context.Context, runID string, calls []core.ToolCall) error {
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.logger.Info("agent.tool", "run", runID, "tool", call.Name, "call_id", call.ID)

		if a.observer != nil {
			a.observer.OnToolStart(call)
		}
		result := a.tools.ExecuteSafely(call.Name, call.ID, call.Arguments)
		if a.observer != nil {
			a.observer.OnToolEnd(result)
		}

		a.messages = append(a.messages, result.Message())
	}
	return nil
}
