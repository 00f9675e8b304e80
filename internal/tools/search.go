package tools

import (
	"context"

	"github.com/HendryAvila/cca/internal/capture"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// SearchTool handles the search_context MCP tool.
type SearchTool struct {
	capturer Capturer
	logger   *zap.Logger
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(c Capturer, logger *zap.Logger) *SearchTool {
	return &SearchTool{capturer: c, logger: orNop(logger)}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_context",
		mcp.WithDescription(
			"Search a project's captured context tree and get a summarized answer with references to the topics used. "+
				"The project is detected from the working directory when there is no projectName or projectPath.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What you want to know about the project"),
		),
		mcp.WithString("projectName",
			mcp.Description("Name of the project to search (as listed by list_projects)"),
		),
		mcp.WithString("projectPath",
			mcp.Description("Path of the project directory; its base name is used as the project name"),
		),
	)
}

// Handle processes the search_context tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.capturer.SearchContext(ctx, capture.SearchParams{
		Query:       req.GetString("query", ""),
		ProjectName: req.GetString("projectName", ""),
		ProjectPath: req.GetString("projectPath", ""),
	})
	if !res.Success {
		t.logger.Error("search_context failed", zap.String("error", res.Error))
		return mcp.NewToolResultError(res.Error), nil
	}
	t.logger.Info("search_context completed", zap.String("project", res.ProjectName))
	return mcp.NewToolResultText(res.Result), nil
}
