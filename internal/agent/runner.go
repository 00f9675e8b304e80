package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// ErrStepLimit is returned when a task is still calling tools after its
// step budget is spent.
var ErrStepLimit = errors.New("agent step limit reached")

// DefaultMaxSteps applies when a Task leaves MaxSteps unset.
const DefaultMaxSteps = 50

// Model is the slice of langchaingo's llms.Model the runner uses.
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Task is one agent invocation.
type Task struct {
	Name         string
	SystemPrompt string
	Prompt       string
	Tools        []Tool
	MaxSteps     int

	// Logger, when set, replaces the runner's logger for this task.
	Logger *zap.Logger
}

// Outcome summarises a finished task.
type Outcome struct {
	Text      string
	Steps     int
	ToolCalls int
}

// Runner executes tasks against one injected model. It holds no
// per-task state and may run tasks concurrently.
type Runner struct {
	model       Model
	temperature float64
	logger      *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(model Model, temperature float64, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{model: model, temperature: temperature, logger: logger}
}

// Run loops model turns and tool calls until the model answers without
// calling a tool, the step budget is spent or ctx is done. Each model
// turn counts as one step.
func (r *Runner) Run(ctx context.Context, task Task) (*Outcome, error) {
	log := r.logger
	if task.Logger != nil {
		log = task.Logger
	}
	log = log.Named("agent." + task.Name)
	start := time.Now()

	maxSteps := task.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	byName := make(map[string]Tool, len(task.Tools))
	defs := make([]llms.Tool, 0, len(task.Tools))
	for _, t := range task.Tools {
		def, err := toolDefinition(t.Definition())
		if err != nil {
			return nil, err
		}
		byName[def.Function.Name] = t
		defs = append(defs, def)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, task.SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, task.Prompt),
	}
	opts := []llms.CallOption{llms.WithTemperature(r.temperature)}
	if len(defs) > 0 {
		opts = append(opts, llms.WithTools(defs))
	}

	out := &Outcome{}
	log.Info("agent started", zap.Int("tools", len(defs)), zap.Int("max_steps", maxSteps))

	for out.Steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Steps++

		resp, err := r.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return out, fmt.Errorf("%s: model call failed at step %d: %w", task.Name, out.Steps, err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return out, fmt.Errorf("%s: model returned no choices at step %d", task.Name, out.Steps)
		}
		choice := resp.Choices[0]

		messages = append(messages, assistantMessage(choice))
		if len(choice.ToolCalls) == 0 {
			out.Text = choice.Content
			log.Info("agent finished",
				zap.Int("steps", out.Steps),
				zap.Int("tool_calls", out.ToolCalls),
				zap.Duration("elapsed", time.Since(start)))
			return out, nil
		}

		for _, call := range choice.ToolCalls {
			out.ToolCalls++
			name := ""
			if call.FunctionCall != nil {
				name = call.FunctionCall.Name
			}
			result := r.invoke(ctx, log, byName, call)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       name,
					Content:    result,
				}},
			})
		}
	}

	log.Warn("agent step limit reached", zap.Int("steps", out.Steps), zap.Int("tool_calls", out.ToolCalls))
	return out, fmt.Errorf("%s: %w (%d)", task.Name, ErrStepLimit, maxSteps)
}

func assistantMessage(choice *llms.ContentChoice) llms.MessageContent {
	msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		msg.Parts = append(msg.Parts, llms.TextContent{Text: choice.Content})
	}
	for _, call := range choice.ToolCalls {
		msg.Parts = append(msg.Parts, call)
	}
	return msg
}

// invoke runs one tool call. Failures of any kind become an "Error: ..."
// observation for the model rather than aborting the task.
func (r *Runner) invoke(ctx context.Context, log *zap.Logger, tools map[string]Tool, call llms.ToolCall) string {
	if call.FunctionCall == nil {
		return "Error: malformed tool call"
	}
	name := call.FunctionCall.Name
	tool, ok := tools[name]
	if !ok {
		log.Warn("unknown tool requested", zap.String("tool", name))
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.FunctionCall.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			log.Warn("invalid tool arguments", zap.String("tool", name), zap.Error(err))
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	log.Debug("tool call", zap.String("tool", name))
	res, err := tool.Handle(ctx, req)
	if err != nil {
		log.Error("tool failed", zap.String("tool", name), zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	if res != nil && res.IsError {
		log.Debug("tool reported error", zap.String("tool", name), zap.String("error", ResultText(res)))
	}
	return Observation(res)
}
