package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectsTool handles the list_projects MCP tool.
// It reads the store directly; no agent is involved.
type ProjectsTool struct {
	store *knowledge.Store
}

// NewProjectsTool creates a ProjectsTool.
func NewProjectsTool(store *knowledge.Store) *ProjectsTool {
	return &ProjectsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription(
			"List the projects that have captured context, with their domains and topic counts.",
		),
	)
}

// Handle processes the list_projects tool call.
func (t *ProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.store.ListProjects()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not list projects: %v", err)), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects have been initialized. Use init_project first."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Projects (%d)\n", len(projects))
	for _, name := range projects {
		structure, err := t.store.ListProjectStructure(name)
		if err != nil {
			fmt.Fprintf(&sb, "\n## %s\n\n_unreadable: %v_\n", name, err)
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", name)
		if structure == nil || len(structure.Domains) == 0 {
			sb.WriteString("_No domains yet._\n")
			continue
		}
		sb.WriteString("| Domain | Topics |\n|--------|--------|\n")
		for _, d := range structure.Domains {
			fmt.Fprintf(&sb, "| %s | %d |\n", d.Name, len(d.Topics))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
