package surfaces

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/source"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Explorer returns the tools of the exploration agent: read-only access to
// the codebase plus the exploration document.
func Explorer(b Binding) []agent.Tool {
	b = b.withDefaults("explorer")
	return []agent.Tool{
		&ReadAgentContextTool{b: b},
		&FindKeyFilesTool{b: b},
		&ReadFileTool{b: b},
		&ListDirectoryTool{b: b},
		&SearchFilesTool{b: b},
		&WriteExplorationTool{b: b},
		&UpdateExplorationTool{b: b},
	}
}

// ─── read_agent_context ──────────────────────────────────────────────────────

// ReadAgentContextTool collects instruction files left for AI assistants.
type ReadAgentContextTool struct{ b Binding }

func (t *ReadAgentContextTool) Definition() mcp.Tool {
	return mcp.NewTool("read_agent_context",
		mcp.WithDescription(
			"Read existing AI assistant documentation in the project "+
				"(CLAUDE.md, AGENTS.md, GEMINI.md, .cursorrules, .cursor/rules, .github/copilot-instructions.md). "+
				"Call this first.",
		),
	)
}

func (t *ReadAgentContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.b.Source == nil {
		return noSource(), nil
	}
	docs, err := t.b.Source.AgentContext(t.b.Limits.PreviewChars)
	if err != nil {
		t.b.Logger.Warn("agent context discovery failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Could not read agent context: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("No existing AI agent context files found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d agent context file(s).\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", d.Path, d.Content)
	}
	t.b.Logger.Debug("agent context read", zap.Int("files", len(docs)))
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── find_key_files ──────────────────────────────────────────────────────────

// FindKeyFilesTool lists well-known manifests and readmes.
type FindKeyFilesTool struct{ b Binding }

func (t *FindKeyFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("find_key_files",
		mcp.WithDescription("List well-known project files present at the root (README, go.mod, package.json, Dockerfile, Makefile, ...)."),
	)
}

func (t *FindKeyFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.b.Source == nil {
		return noSource(), nil
	}
	files, err := t.b.Source.KeyFiles()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not search for key files: %v", err)), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("No key files found."), nil
	}
	return mcp.NewToolResultText(strings.Join(files, "\n")), nil
}

// ─── read_file ───────────────────────────────────────────────────────────────

// ReadFileTool reads a source file, truncating long ones.
type ReadFileTool struct{ b Binding }

func (t *ReadFileTool) Definition() mcp.Tool {
	return mcp.NewTool("read_file",
		mcp.WithDescription("Read the contents of a file in the project. Use paths relative to the project root."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the file to read"),
		),
	)
}

func (t *ReadFileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "file_path"); r != nil {
		return r, nil
	}
	if t.b.Source == nil {
		return noSource(), nil
	}
	path := req.GetString("file_path", "")

	content, err := t.b.Source.ReadPreview(path, t.b.Limits.PreviewChars)
	if err != nil {
		t.b.Logger.Debug("read_file failed", zap.String("path", path), zap.Error(err))
		return sourceError(err, "read files", path), nil
	}
	if content == "" {
		return mcp.NewToolResultText(fmt.Sprintf("%s is empty.", path)), nil
	}
	return mcp.NewToolResultText(content), nil
}

// ─── list_directory ──────────────────────────────────────────────────────────

// ListDirectoryTool lists a directory, optionally as a tree.
type ListDirectoryTool struct{ b Binding }

func (t *ListDirectoryTool) Definition() mcp.Tool {
	return mcp.NewTool("list_directory",
		mcp.WithDescription("List files and directories. Use recursive=true to see the nested structure."),
		mcp.WithString("dir_path",
			mcp.Description("Directory path to list (default: project root)"),
			mcp.DefaultString("."),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Whether to list recursively"),
			mcp.DefaultBool(false),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Max depth for recursive listing (default: 3)"),
		),
	)
}

func (t *ListDirectoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.b.Source == nil {
		return noSource(), nil
	}
	dir := req.GetString("dir_path", ".")
	if dir == "" {
		dir = "."
	}

	if boolArg(req, "recursive", false) {
		depth := intArg(req, "max_depth", 3)
		if depth <= 0 {
			depth = 3
		}
		nodes, err := t.b.Source.Tree(dir, depth)
		if err != nil {
			return sourceError(err, "list directories", dir), nil
		}
		var sb strings.Builder
		writeNodes(&sb, nodes, "")
		if sb.Len() == 0 {
			return mcp.NewToolResultText("Directory is empty."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	entries, err := t.b.Source.List(dir, func(name string) bool { return !source.Ignored(name) })
	if err != nil {
		return sourceError(err, "list directories", dir), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("Directory is empty."), nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			lines = append(lines, "📁 "+e.Name+"/")
		} else {
			lines = append(lines, "📄 "+e.Name)
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func writeNodes(sb *strings.Builder, nodes []source.Node, indent string) {
	for _, n := range nodes {
		icon := "📄"
		if n.IsDir {
			icon = "📁"
		}
		fmt.Fprintf(sb, "%s%s %s\n", indent, icon, n.Name)
		writeNodes(sb, n.Children, indent+"  ")
	}
}

// ─── search_files ────────────────────────────────────────────────────────────

// SearchFilesTool greps the codebase.
type SearchFilesTool struct{ b Binding }

func (t *SearchFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("search_files",
		mcp.WithDescription(
			"Search for a regex pattern (case-insensitive) across project files. "+
				"Returns matching lines with file paths and line numbers.",
		),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Regular expression to search for"),
		),
		mcp.WithString("file_pattern",
			mcp.Description("Glob to filter files, e.g. **/*.go"),
		),
	)
}

func (t *SearchFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "pattern"); r != nil {
		return r, nil
	}
	if t.b.Source == nil {
		return noSource(), nil
	}
	pattern := req.GetString("pattern", "")
	glob := req.GetString("file_pattern", "")

	results, err := t.b.Source.Grep(ctx, pattern, glob)
	if err != nil {
		return sourceError(err, "search", pattern), nil
	}
	t.b.Logger.Debug("search completed", zap.String("pattern", pattern), zap.Int("files", len(results)))
	if len(results) == 0 {
		return mcp.NewToolResultText("No matches found"), nil
	}

	blocks := make([]string, 0, len(results))
	for _, fm := range results {
		var sb strings.Builder
		sb.WriteString(fm.Path + ":")
		for _, m := range fm.Matches {
			fmt.Fprintf(&sb, "\n  %d: %s", m.Line, m.Text)
		}
		blocks = append(blocks, sb.String())
	}
	return mcp.NewToolResultText(strings.Join(blocks, "\n\n")), nil
}

// ─── write_exploration / update_exploration ──────────────────────────────────

// WriteExplorationTool creates or replaces EXPLORATION.md.
type WriteExplorationTool struct{ b Binding }

func (t *WriteExplorationTool) Definition() mcp.Tool {
	return mcp.NewTool("write_exploration",
		mcp.WithDescription("Write your findings to EXPLORATION.md, replacing any previous version with your complete analysis."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Complete markdown content of the exploration"),
		),
	)
}

func (t *WriteExplorationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, errRes := contentArg(req, "content")
	if errRes != nil {
		return errRes, nil
	}
	path, err := t.b.Store.WriteExploration(t.b.Project, content)
	if err != nil {
		t.b.Logger.Error("writing exploration", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Could not write exploration: %v", err)), nil
	}
	t.b.Logger.Info("exploration written", zap.Int("bytes", len(content)))
	return mcp.NewToolResultText("Exploration saved to: " + path), nil
}

// UpdateExplorationTool replaces an existing EXPLORATION.md.
type UpdateExplorationTool struct{ b Binding }

func (t *UpdateExplorationTool) Definition() mcp.Tool {
	return mcp.NewTool("update_exploration",
		mcp.WithDescription("Replace the existing EXPLORATION.md with refined content. The file must already exist."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Updated markdown content"),
		),
	)
}

func (t *UpdateExplorationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, errRes := contentArg(req, "content")
	if errRes != nil {
		return errRes, nil
	}
	if !t.b.Store.ExplorationExists(t.b.Project) {
		return mcp.NewToolResultError("EXPLORATION.md does not exist. Use write_exploration to create it first."), nil
	}
	path, err := t.b.Store.UpdateExploration(t.b.Project, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not update exploration: %v", err)), nil
	}
	t.b.Logger.Info("exploration updated", zap.Int("bytes", len(content)))
	return mcp.NewToolResultText("Exploration updated: " + path), nil
}
