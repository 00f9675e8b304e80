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

// Searcher returns the read-only tools of the search agent.
func Searcher(b Binding) []agent.Tool {
	b = b.withDefaults("searcher")
	return []agent.Tool{
		&ListContextTreeTool{b: b},
		&ReadTopicTool{b: b},
		&SearchTopicsTool{b: b},
	}
}

// ─── list_context_tree ───────────────────────────────────────────────────────

// ListContextTreeTool renders the domains that hold at least one topic.
type ListContextTreeTool struct{ b Binding }

func (t *ListContextTreeTool) Definition() mcp.Tool {
	return mcp.NewTool("list_context_tree",
		mcp.WithDescription(
			"List the whole context tree: every domain and its topics. "+
				"Use this first to see what knowledge exists.",
		),
	)
}

func (t *ListContextTreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	structure, err := t.b.Store.ListProjectStructure(t.b.Project)
	if err != nil {
		t.b.Logger.Error("listing context tree", zap.Error(err))
		return storeError(err, "list context tree"), nil
	}
	if structure == nil {
		return mcp.NewToolResultText("No context tree exists for this project."), nil
	}
	tree := RenderTree(structure)
	if tree == "" {
		return mcp.NewToolResultText("Context tree is empty. No domains or topics found."), nil
	}
	return mcp.NewToolResultText(tree), nil
}

// RenderTree formats the non-empty domains of a project as
//
//	domain/
//	  ├── topic.md
//
// and returns "" when no domain holds a topic.
func RenderTree(structure *knowledge.ProjectStructure) string {
	var lines []string
	for _, d := range structure.Domains {
		if len(d.Topics) == 0 {
			continue
		}
		lines = append(lines, d.Name+"/")
		for _, topic := range d.Topics {
			lines = append(lines, "  ├── "+topic+knowledge.TopicExt)
		}
	}
	return strings.Join(lines, "\n")
}

// ─── read_topic ──────────────────────────────────────────────────────────────

// ReadTopicTool returns the content of one topic.
type ReadTopicTool struct{ b Binding }

func (t *ReadTopicTool) Definition() mcp.Tool {
	return mcp.NewTool("read_topic",
		mcp.WithDescription("Read the content of a topic. Provide the domain and topic name."),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Domain name (folder name)"),
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic name without the .md extension"),
		),
	)
}

func (t *ReadTopicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return readTopic(t.b, req)
}

func readTopic(b Binding, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if r := requireArgs(req, "domain", "topic"); r != nil {
		return r, nil
	}
	domain, topic := req.GetString("domain", ""), req.GetString("topic", "")

	content, found, err := b.Store.ReadTopic(b.Project, domain, topic)
	if err != nil {
		return storeError(err, "read topic"), nil
	}
	if !found {
		b.Logger.Debug("topic not found", zap.String("domain", domain), zap.String("topic", topic))
		return mcp.NewToolResultError(ref(domain, topic) + " does not exist."), nil
	}
	return mcp.NewToolResultText(content), nil
}

// ─── search_topics ───────────────────────────────────────────────────────────

// SearchTopicsTool runs a ranked full-text search over all topics.
type SearchTopicsTool struct{ b Binding }

func (t *SearchTopicsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_topics",
		mcp.WithDescription(
			"Full-text search across the content of every topic. "+
				"Returns the best matching topics with a snippet. Useful when domain and topic names are not enough.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Words to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10)"),
		),
	)
}

func (t *SearchTopicsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := intArg(req, "limit", knowledge.DefaultSearchLimit)

	hits, err := t.b.Store.SearchTopics(ctx, t.b.Project, query, limit)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyQuery) {
			return mcp.NewToolResultError("'query' is required"), nil
		}
		t.b.Logger.Error("search_topics failed", zap.Error(err))
		return storeError(err, "search topics"), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No topics match %q.", query)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d matching topic(s):\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "\n%d. %s\n   %s", i+1, ref(h.Domain, h.Topic), strings.ReplaceAll(h.Snippet, "\n", " "))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
