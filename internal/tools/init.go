package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// InitTool handles the init_project MCP tool.
// It explores a codebase and writes its context tree.
type InitTool struct {
	capturer Capturer
	logger   *zap.Logger
}

// NewInitTool creates an InitTool.
func NewInitTool(c Capturer, logger *zap.Logger) *InitTool {
	return &InitTool{capturer: c, logger: orNop(logger)}
}

// Definition returns the MCP tool definition for registration.
func (t *InitTool) Definition() mcp.Tool {
	return mcp.NewTool("init_project",
		mcp.WithDescription(
			"Initialize context capturing for a project. "+
				"This explores the codebase using an AI agent and creates a structured context tree in the memory directory. "+
				"It can take several minutes.",
		),
		mcp.WithString("projectPath",
			mcp.Required(),
			mcp.Description("Absolute path to the project directory to analyze"),
		),
	)
}

// Handle processes the init_project tool call.
func (t *InitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("projectPath", "")
	if path == "" {
		return mcp.NewToolResultError("'projectPath' is required"), nil
	}

	t.logger.Info("starting init_project", zap.String("path", path))
	res := t.capturer.InitProject(ctx, path)
	if !res.Success {
		t.logger.Error("init_project failed", zap.String("error", res.Error))
		return mcp.NewToolResultError("Failed to initialize project: " + res.Error), nil
	}

	t.logger.Info("init_project completed",
		zap.String("project", res.ProjectName),
		zap.String("memory_path", res.MemoryPath))
	return mcp.NewToolResultText(fmt.Sprintf(
		"Successfully initialized context for project: %s\n\nContext tree created at: %s",
		res.ProjectName, res.MemoryPath,
	)), nil
}
