package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the cca-status MCP prompt.
// It instructs the AI to present the captured projects and their trees.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("cca-status",
		mcp.WithPromptDescription(
			"Show which projects have captured context and what their knowledge trees contain.",
		),
	)
}

// Handle processes the cca-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Captured context status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `list_projects` to see which projects have captured context.\n\n" +
						"Then:\n" +
						"1. Show each project with its domains and topic counts\n" +
						"2. Point out domains that look empty or thin\n" +
						"3. If none exist, explain that `init_project` captures a codebase first",
				),
			},
		},
	}, nil
}
