package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/HendryAvila/cca/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// ─── Fakes ───────────────────────────────────────────────────────────────────

// scriptedModel replays canned choices and records what it was sent.
type scriptedModel struct {
	replies []*llms.ContentChoice
	calls   [][]llms.MessageContent
	err     error
}

func (m *scriptedModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls = append(m.calls, append([]llms.MessageContent(nil), msgs...))
	if m.err != nil {
		return nil, m.err
	}
	if len(m.calls) > len(m.replies) {
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{m.replies[len(m.replies)-1]}}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{m.replies[len(m.calls)-1]}}, nil
}

func toolCall(id, name, args string) *llms.ContentChoice {
	return &llms.ContentChoice{ToolCalls: []llms.ToolCall{{
		ID:           id,
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: name, Arguments: args},
	}}}
}

func answer(text string) *llms.ContentChoice {
	return &llms.ContentChoice{Content: text}
}

// echoTool returns its "text" argument, or an error result when "fail" is set.
type echoTool struct {
	seen []string
}

func (t *echoTool) Definition() mcp.Tool {
	return mcp.NewTool("echo",
		mcp.WithDescription("Echo text back"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to echo")),
		mcp.WithBoolean("fail", mcp.Description("Return an error result")),
	)
}

func (t *echoTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	t.seen = append(t.seen, text)
	if fail, _ := req.GetArguments()["fail"].(bool); fail {
		return mcp.NewToolResultError("echo refused " + text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// lastToolResponse returns the content of the final tool message sent to the model.
func lastToolResponse(t *testing.T, msgs []llms.MessageContent) string {
	t.Helper()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != llms.ChatMessageTypeTool {
			continue
		}
		resp, ok := msgs[i].Parts[0].(llms.ToolCallResponse)
		require.True(t, ok)
		return resp.Content
	}
	t.Fatal("no tool message")
	return ""
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestRun_ToolLoop(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{
		toolCall("c1", "echo", `{"text":"hello"}`),
		answer("done: hello"),
	}}
	tool := &echoTool{}
	r := NewRunner(model, 0, nil)

	out, err := r.Run(context.Background(), Task{
		Name:         "test",
		SystemPrompt: "system",
		Prompt:       "go",
		Tools:        []Tool{tool},
		MaxSteps:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, "done: hello", out.Text)
	assert.Equal(t, 2, out.Steps)
	assert.Equal(t, 1, out.ToolCalls)
	assert.Equal(t, []string{"hello"}, tool.seen)

	require.Len(t, model.calls, 2)
	first := model.calls[0]
	require.Len(t, first, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, first[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, first[1].Role)
	assert.Equal(t, "hello", lastToolResponse(t, model.calls[1]))
}

func TestRun_ErrorObservations(t *testing.T) {
	tests := []struct {
		name string
		call *llms.ContentChoice
		want string
	}{
		{"tool error result", toolCall("c1", "echo", `{"text":"x","fail":true}`), "Error: echo refused x"},
		{"unknown tool", toolCall("c1", "rm_rf", `{}`), `Error: unknown tool "rm_rf"`},
		{"bad json", toolCall("c1", "echo", `{"text":`), "Error: invalid arguments for echo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &scriptedModel{replies: []*llms.ContentChoice{tt.call, answer("ok")}}
			r := NewRunner(model, 0, nil)

			out, err := r.Run(context.Background(), Task{Name: "t", Tools: []Tool{&echoTool{}}})
			require.NoError(t, err)
			assert.Equal(t, "ok", out.Text)
			assert.Contains(t, lastToolResponse(t, model.calls[1]), tt.want)
		})
	}
}

func TestRun_StepLimit(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{toolCall("c", "echo", `{"text":"again"}`)}}
	r := NewRunner(model, 0, nil)

	out, err := r.Run(context.Background(), Task{Name: "loop", Tools: []Tool{&echoTool{}}, MaxSteps: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.Equal(t, 3, out.Steps)
	assert.Len(t, model.calls, 3)
}

func TestRun_ModelError(t *testing.T) {
	boom := errors.New("rate limited")
	r := NewRunner(&scriptedModel{err: boom}, 0, nil)

	_, err := r.Run(context.Background(), Task{Name: "t"})
	assert.ErrorIs(t, err, boom)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model := &scriptedModel{replies: []*llms.ContentChoice{answer("never")}}

	_, err := NewRunner(model, 0, nil).Run(ctx, Task{Name: "t"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, model.calls)
}

func TestToolDefinition(t *testing.T) {
	def, err := toolDefinition((&echoTool{}).Definition())
	require.NoError(t, err)
	assert.Equal(t, "function", def.Type)
	assert.Equal(t, "echo", def.Function.Name)

	params, ok := def.Function.Parameters.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "text")
	assert.Contains(t, props, "fail")
	assert.ElementsMatch(t, []any{"text"}, params["required"])

	bare, err := toolDefinition(mcp.NewTool("noargs", mcp.WithDescription("no arguments")))
	require.NoError(t, err)
	assert.Contains(t, bare.Function.Parameters.(map[string]any), "properties")
}

func TestObservation(t *testing.T) {
	assert.Equal(t, "fine", Observation(mcp.NewToolResultText("fine")))
	assert.Equal(t, "Error: nope", Observation(mcp.NewToolResultError("nope")))
	assert.Equal(t, "", Observation(nil))
}

func TestNewModel_UnknownProvider(t *testing.T) {
	_, err := NewModel(config.LLMConfig{Provider: "llama", Model: "x"})
	assert.Error(t, err)
}
