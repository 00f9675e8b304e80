// Package resources implements MCP resource handlers for captured context.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (cca://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ProjectsURI     = "cca://projects"
	TreeURITemplate = "cca://projects/{project}/tree"
)

// Handler manages cca resource endpoints.
type Handler struct {
	store *knowledge.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *knowledge.Store) *Handler {
	return &Handler{store: store}
}

// ProjectsResource returns the MCP resource definition for the project list.
func (h *Handler) ProjectsResource() mcp.Resource {
	return mcp.NewResource(
		ProjectsURI,
		"Captured projects",
		mcp.WithResourceDescription("Names of every project with a context tree"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjects returns the project names as a JSON array.
func (h *Handler) HandleProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.store.ListProjects()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, projects)
}

// TreeTemplate returns the MCP resource template for one project's tree.
func (h *Handler) TreeTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		TreeURITemplate,
		"Project context tree",
		mcp.WithTemplateDescription("Domains and topics captured for a project"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleTree returns the project's domains and topics as JSON.
func (h *Handler) HandleTree(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	project, ok := projectFromURI(req.Params.URI)
	if !ok {
		return errorResource(req.Params.URI, "expected "+TreeURITemplate), nil
	}
	structure, err := h.store.ListProjectStructure(project)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if structure == nil {
		return errorResource(req.Params.URI, fmt.Sprintf("no context exists for project %q", project)), nil
	}
	return jsonResource(req.Params.URI, structure)
}

// projectFromURI extracts {project} from cca://projects/{project}/tree.
func projectFromURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, ProjectsURI+"/")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "/tree")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name, true
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
