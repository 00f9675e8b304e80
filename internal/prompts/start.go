// Package prompts holds the text that drives the agents and the MCP
// prompts offered to hosts.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the host AI to run a sequence of cca tools. Agent prompts are
// the system prompts and kickoff messages of the internal agents.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the cca-start MCP prompt.
// It guides the host to capture context for a codebase.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("cca-start",
		mcp.WithPromptDescription(
			"Capture a knowledge tree for a codebase. "+
				"Explores the project and writes domains and topics that later searches and updates use.",
		),
		mcp.WithArgument("project_path",
			mcp.ArgumentDescription("Absolute path of the codebase to capture. Defaults to the current workspace."),
		),
	)
}

// Handle processes the cca-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "the current workspace root"
	if args := req.Params.Arguments; args != nil {
		if path, ok := args["project_path"]; ok && path != "" {
			target = fmt.Sprintf("`%s`", path)
		}
	}

	return &mcp.GetPromptResult{
		Description: "Capture project context",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please call `init_project` with projectPath set to %s.\n\n"+
						"This can take a few minutes: an explorer agent reads the code, then a writer agent "+
						"organises its findings into domains and topics.\n\n"+
						"When it finishes:\n"+
						"1. Tell me where the context tree was written\n"+
						"2. Call `list_projects` and show the new project's domains\n"+
						"3. Suggest two or three questions I could ask with `search_context`",
					target,
				)),
			},
		},
	}, nil
}
