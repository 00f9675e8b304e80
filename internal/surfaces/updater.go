package surfaces

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/source"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Updater returns the tools of the update agent. Unlike the writer's,
// its writes are strict: creating needs a free name in an existing
// domain and updating needs an existing topic.
func Updater(b Binding) []agent.Tool {
	b = b.withDefaults("updater")
	return []agent.Tool{
		&ListContextTreeTool{b: b},
		&ReadTopicTool{b: b},
		&SearchTopicsTool{b: b},
		&UpdateTopicTool{b: b},
		&CreateTopicTool{b: b},
		&CreateDomainTool{b: b},
		&DeleteTopicTool{b: b},
		&DeleteDomainTool{b: b},
		&ReadSourceFileTool{b: b},
		&ListSourceDirectoryTool{b: b},
	}
}

// ─── update_topic ────────────────────────────────────────────────────────────

// UpdateTopicTool replaces or appends to an existing topic.
type UpdateTopicTool struct{ b Binding }

func (t *UpdateTopicTool) Definition() mcp.Tool {
	return mcp.NewTool("update_topic",
		mcp.WithDescription("Update an existing topic. Replaces its content, or appends to it when append_mode is true."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Domain name (folder name)")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name without the .md extension")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content, or the section to append")),
		mcp.WithBoolean("append_mode",
			mcp.Description("Append to the existing content instead of replacing it"),
			mcp.DefaultBool(false),
		),
	)
}

func (t *UpdateTopicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain", "topic"); r != nil {
		return r, nil
	}
	content, errRes := contentArg(req, "content")
	if errRes != nil {
		return errRes, nil
	}
	domain, topic := req.GetString("domain", ""), req.GetString("topic", "")
	appendMode := boolArg(req, "append_mode", false)

	if _, err := t.b.Store.UpdateTopic(t.b.Project, domain, topic, content, appendMode); err != nil {
		if errors.Is(err, knowledge.ErrTopicNotFound) {
			return mcp.NewToolResultError(ref(domain, topic) + " does not exist. Use create_topic instead."), nil
		}
		t.b.Logger.Error("update_topic failed", zap.String("domain", domain), zap.String("topic", topic), zap.Error(err))
		return storeError(err, "update topic"), nil
	}

	t.b.Logger.Info("topic updated", zap.String("domain", domain), zap.String("topic", topic), zap.Bool("append", appendMode))
	if appendMode {
		return mcp.NewToolResultText("Successfully appended to " + ref(domain, topic)), nil
	}
	return mcp.NewToolResultText("Successfully updated " + ref(domain, topic)), nil
}

// ─── create_topic ────────────────────────────────────────────────────────────

// CreateTopicTool adds a new topic to an existing domain.
type CreateTopicTool struct{ b Binding }

func (t *CreateTopicTool) Definition() mcp.Tool {
	return mcp.NewTool("create_topic",
		mcp.WithDescription("Create a new topic in an existing domain."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Domain name (folder name); must exist")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name without the .md extension; must not exist")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content of the new topic")),
	)
}

func (t *CreateTopicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain", "topic"); r != nil {
		return r, nil
	}
	content, errRes := contentArg(req, "content")
	if errRes != nil {
		return errRes, nil
	}
	domain, topic := req.GetString("domain", ""), req.GetString("topic", "")

	_, err := t.b.Store.CreateTopic(t.b.Project, domain, topic, content)
	switch {
	case errors.Is(err, knowledge.ErrDomainNotFound):
		return mcp.NewToolResultError(fmt.Sprintf(
			"Domain %q does not exist. Use create_domain first or specify an existing domain.", domain)), nil
	case errors.Is(err, knowledge.ErrTopicExists):
		return mcp.NewToolResultError(ref(domain, topic) + " already exists. Use update_topic instead."), nil
	case err != nil:
		t.b.Logger.Error("create_topic failed", zap.String("domain", domain), zap.String("topic", topic), zap.Error(err))
		return storeError(err, "create topic"), nil
	}

	t.b.Logger.Info("topic created", zap.String("domain", domain), zap.String("topic", topic))
	return mcp.NewToolResultText("Successfully created " + ref(domain, topic)), nil
}

// ─── create_domain ───────────────────────────────────────────────────────────

// CreateDomainTool adds a new domain, optionally with a first topic.
type CreateDomainTool struct{ b Binding }

func (t *CreateDomainTool) Definition() mcp.Tool {
	return mcp.NewTool("create_domain",
		mcp.WithDescription("Create a new domain for a genuinely new area. Optionally create its first topic at the same time."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Name of the new domain; must not exist")),
		mcp.WithString("initial_topic", mcp.Description("Optional first topic name without the .md extension")),
		mcp.WithString("initial_content", mcp.Description("Content of the first topic")),
	)
}

func (t *CreateDomainTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain"); r != nil {
		return r, nil
	}
	domain := req.GetString("domain", "")
	initialTopic := strings.TrimSpace(req.GetString("initial_topic", ""))
	initialContent := req.GetString("initial_content", "")

	if _, err := t.b.Store.CreateDomainExclusive(t.b.Project, domain); err != nil {
		if errors.Is(err, knowledge.ErrDomainExists) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Domain %q already exists. Use create_topic to add topics to it.", domain)), nil
		}
		return storeError(err, "create domain"), nil
	}

	if initialTopic == "" {
		t.b.Logger.Info("domain created", zap.String("domain", domain))
		return mcp.NewToolResultText(fmt.Sprintf("Successfully created domain %q", domain)), nil
	}
	if _, err := t.b.Store.CreateTopic(t.b.Project, domain, initialTopic, initialContent); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Domain %q was created but its initial topic failed: %v", domain, err)), nil
	}
	t.b.Logger.Info("domain created", zap.String("domain", domain), zap.String("topic", initialTopic))
	return mcp.NewToolResultText(fmt.Sprintf(
		"Successfully created domain %q with initial topic %s%s", domain, initialTopic, knowledge.TopicExt)), nil
}

// ─── delete_topic / delete_domain ────────────────────────────────────────────

// DeleteTopicTool removes an obsolete topic.
type DeleteTopicTool struct{ b Binding }

func (t *DeleteTopicTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_topic",
		mcp.WithDescription("Delete a topic that is no longer relevant or has become obsolete."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Domain name (folder name)")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic name without the .md extension")),
	)
}

func (t *DeleteTopicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain", "topic"); r != nil {
		return r, nil
	}
	domain, topic := req.GetString("domain", ""), req.GetString("topic", "")

	ok, err := t.b.Store.DeleteTopic(t.b.Project, domain, topic)
	if err != nil {
		return storeError(err, "delete topic"), nil
	}
	if !ok {
		return mcp.NewToolResultError(ref(domain, topic) + " does not exist."), nil
	}
	t.b.Logger.Info("topic deleted", zap.String("domain", domain), zap.String("topic", topic))
	return mcp.NewToolResultText("Successfully deleted " + ref(domain, topic)), nil
}

// DeleteDomainTool removes a domain and all of its topics.
type DeleteDomainTool struct{ b Binding }

func (t *DeleteDomainTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_domain",
		mcp.WithDescription("Delete an entire domain and all of its topics. Prefer deleting individual topics first."),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Domain name (folder name)")),
	)
}

func (t *DeleteDomainTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain"); r != nil {
		return r, nil
	}
	domain := req.GetString("domain", "")

	topics, err := t.b.Store.ListTopics(t.b.Project, domain)
	if err != nil {
		return storeError(err, "delete domain"), nil
	}
	ok, err := t.b.Store.DeleteDomain(t.b.Project, domain)
	if err != nil {
		return storeError(err, "delete domain"), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Domain %q does not exist.", domain)), nil
	}
	t.b.Logger.Info("domain deleted", zap.String("domain", domain), zap.Int("topics_removed", len(topics)))
	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted domain %q (%d topic(s) removed)", domain, len(topics))), nil
}

// ─── read_source_file / list_source_directory ────────────────────────────────

// ReadSourceFileTool reads a codebase file so updates can be checked
// against the real code.
type ReadSourceFileTool struct{ b Binding }

func (t *ReadSourceFileTool) Definition() mcp.Tool {
	return mcp.NewTool("read_source_file",
		mcp.WithDescription(
			"Read a file from the project codebase to verify changes or gather accurate details "+
				"(function signatures, file paths) for the documentation.",
		),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path relative to the project root, e.g. internal/auth/middleware.go"),
		),
	)
}

func (t *ReadSourceFileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "file_path"); r != nil {
		return r, nil
	}
	if t.b.Source == nil {
		return noSource(), nil
	}
	path := req.GetString("file_path", "")

	content, err := t.b.Source.ReadFile(path, t.b.Limits.MaxReadBytes)
	if err != nil {
		t.b.Logger.Debug("read_source_file failed", zap.String("path", path), zap.Error(err))
		return sourceError(err, "read files", path), nil
	}
	return mcp.NewToolResultText(content), nil
}

// ListSourceDirectoryTool lists a codebase directory, hiding dotfiles and
// node_modules.
type ListSourceDirectoryTool struct{ b Binding }

func (t *ListSourceDirectoryTool) Definition() mcp.Tool {
	return mcp.NewTool("list_source_directory",
		mcp.WithDescription("List files and subdirectories of a project directory to find relevant files."),
		mcp.WithString("dir_path",
			mcp.Description("Directory relative to the project root, e.g. internal/auth. Leave empty for the root."),
		),
	)
}

func (t *ListSourceDirectoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.b.Source == nil {
		return noSource(), nil
	}
	dir := req.GetString("dir_path", "")
	shown := dir
	if shown == "" {
		shown = "."
	}

	entries, err := t.b.Source.List(dir, source.Visible)
	if err != nil {
		return sourceError(err, "list directories", shown), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("Directory is empty."), nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			lines = append(lines, e.Name+"/")
		} else {
			lines = append(lines, e.Name)
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
