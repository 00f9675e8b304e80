package surfaces

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Writer returns the tools of the tree-building agent. Its writes are
// permissive: domains are created on demand.
func Writer(b Binding) []agent.Tool {
	b = b.withDefaults("writer")
	return []agent.Tool{
		&ReadExplorationTool{b: b},
		&WriteContextTool{b: b},
		&UpdateContextTool{b: b},
		&ListContextTool{b: b},
		&ReadContextTool{b: b},
	}
}

// ReadExplorationTool returns EXPLORATION.md.
type ReadExplorationTool struct{ b Binding }

func (t *ReadExplorationTool) Definition() mcp.Tool {
	return mcp.NewTool("read_exploration",
		mcp.WithDescription("Read EXPLORATION.md, the explorer's notes about the codebase."),
	)
}

func (t *ReadExplorationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, found, err := t.b.Store.ReadExploration(t.b.Project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not read exploration: %v", err)), nil
	}
	if !found {
		return mcp.NewToolResultError("EXPLORATION.md does not exist. The explorer agent must run first."), nil
	}
	return mcp.NewToolResultText(content), nil
}

// WriteContextTool writes a topic, creating its domain when needed.
type WriteContextTool struct{ b Binding }

func (t *WriteContextTool) Definition() mcp.Tool {
	return mcp.NewTool("write_context",
		mcp.WithDescription("Write a topic file in the context tree. The domain folder is created if it does not exist."),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Domain name, e.g. Architecture, API, Frontend"),
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic name without the .md extension, e.g. authentication"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content of the topic"),
		),
	)
}

func (t *WriteContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain", "topic"); r != nil {
		return r, nil
	}
	content, errRes := contentArg(req, "content")
	if errRes != nil {
		return errRes, nil
	}
	domain, topic := req.GetString("domain", ""), req.GetString("topic", "")

	if _, err := t.b.Store.Write(t.b.Project, domain, topic, content); err != nil {
		t.b.Logger.Error("write_context failed", zap.String("domain", domain), zap.String("topic", topic), zap.Error(err))
		return storeError(err, "write context"), nil
	}
	t.b.Logger.Info("context written", zap.String("domain", domain), zap.String("topic", topic))
	return mcp.NewToolResultText("Context written: " + ref(domain, topic)), nil
}

// UpdateContextTool replaces an existing topic.
type UpdateContextTool struct{ b Binding }

func (t *UpdateContextTool) Definition() mcp.Tool {
	return mcp.NewTool("update_context",
		mcp.WithDescription("Replace the content of an existing topic file."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Domain name")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name without the .md extension")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New markdown content")),
	)
}

func (t *UpdateContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain", "topic"); r != nil {
		return r, nil
	}
	content, errRes := contentArg(req, "content")
	if errRes != nil {
		return errRes, nil
	}
	domain, topic := req.GetString("domain", ""), req.GetString("topic", "")

	if _, err := t.b.Store.UpdateTopic(t.b.Project, domain, topic, content, false); err != nil {
		if errors.Is(err, knowledge.ErrTopicNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("%s does not exist. Use write_context to create it.", ref(domain, topic))), nil
		}
		return storeError(err, "update context"), nil
	}
	t.b.Logger.Info("context updated", zap.String("domain", domain), zap.String("topic", topic))
	return mcp.NewToolResultText("Context updated: " + ref(domain, topic)), nil
}

// ListContextTool shows every domain, including empty ones.
type ListContextTool struct{ b Binding }

func (t *ListContextTool) Definition() mcp.Tool {
	return mcp.NewTool("list_context",
		mcp.WithDescription("List the context tree written so far, including empty domains."),
	)
}

func (t *ListContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	structure, err := t.b.Store.ListProjectStructure(t.b.Project)
	if err != nil {
		return storeError(err, "list context"), nil
	}
	if structure == nil {
		return mcp.NewToolResultText("No context tree exists yet."), nil
	}

	var blocks []string
	for _, d := range structure.Domains {
		var sb strings.Builder
		sb.WriteString("📁 " + d.Name + "/")
		for _, topic := range d.Topics {
			sb.WriteString("\n   📄 " + topic + knowledge.TopicExt)
		}
		blocks = append(blocks, sb.String())
	}
	if t.b.Store.ExplorationExists(t.b.Project) {
		blocks = append(blocks, "📄 "+knowledge.ExplorationFile)
	}
	if len(blocks) == 0 {
		return mcp.NewToolResultText("Context tree is empty."), nil
	}
	return mcp.NewToolResultText(strings.Join(blocks, "\n")), nil
}

// ReadContextTool reads one topic back.
type ReadContextTool struct{ b Binding }

func (t *ReadContextTool) Definition() mcp.Tool {
	return mcp.NewTool("read_context",
		mcp.WithDescription("Read a topic file from the context tree."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Domain name")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name without the .md extension")),
	)
}

func (t *ReadContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return readTopic(t.b, req)
}

// storeError maps knowledge-store failures to the messages agents see.
func storeError(err error, what string) *mcp.CallToolResult {
	if errors.Is(err, knowledge.ErrInvalidName) {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid name: %v. Names must not contain path separators.", err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Could not %s: %v", what, err))
}
