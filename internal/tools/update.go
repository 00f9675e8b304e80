package tools

import (
	"context"

	"github.com/HendryAvila/cca/internal/capture"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// UpdateTool handles the update_context MCP tool.
type UpdateTool struct {
	capturer Capturer
	logger   *zap.Logger
}

// NewUpdateTool creates an UpdateTool.
func NewUpdateTool(c Capturer, logger *zap.Logger) *UpdateTool {
	return &UpdateTool{capturer: c, logger: orNop(logger)}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("update_context",
		mcp.WithDescription(
			"Fold new information or recent changes into a project's context tree. "+
				"An agent decides whether to update, create, delete or skip topics and reports what it did.",
		),
		mcp.WithString("context",
			mcp.Required(),
			mcp.Description("Description of the new information or change, e.g. 'Added rate limiting to the public API'"),
		),
		mcp.WithString("projectName",
			mcp.Description("Name of the project to update"),
		),
		mcp.WithString("projectPath",
			mcp.Description("Path of the project directory; also where source files are read from"),
		),
	)
}

// Handle processes the update_context tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := t.capturer.UpdateContext(ctx, capture.UpdateParams{
		Context:     req.GetString("context", ""),
		ProjectName: req.GetString("projectName", ""),
		ProjectPath: req.GetString("projectPath", ""),
	})
	if !res.Success {
		t.logger.Error("update_context failed", zap.String("error", res.Error))
		return mcp.NewToolResultError(res.Error), nil
	}
	t.logger.Info("update_context completed", zap.String("project", res.ProjectName))
	return mcp.NewToolResultText(res.Result), nil
}
