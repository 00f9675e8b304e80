// Package server is the composition root. It builds the knowledge store,
// the agent runner and the capture service from configuration, and
// registers the MCP tools, prompts and resources on top of them.
// The CLI reuses NewStore and NewCapture.
package server

import (
	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/capture"
	"github.com/HendryAvila/cca/internal/config"
	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/prompts"
	"github.com/HendryAvila/cca/internal/resolver"
	"github.com/HendryAvila/cca/internal/resources"
	"github.com/HendryAvila/cca/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Name is the MCP server name announced to hosts.
const Name = "context-capturing-agents"

// Version is set at build time via ldflags.
var Version = "dev"

// NewStore creates the knowledge store configured by cfg.
func NewStore(cfg *config.Config, logger *zap.Logger) *knowledge.Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return knowledge.New(cfg.BaseDir, logger.Named("knowledge"))
}

// NewCapture builds the capture service on top of an injected model.
// The CLI and the MCP server share it.
func NewCapture(cfg *config.Config, model agent.Model, logger *zap.Logger) *capture.Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := NewStore(cfg, logger)
	runner := agent.NewRunner(model, cfg.LLM.Temperature, logger)
	return capture.New(store, resolver.New(store), runner, capture.OptionsFrom(cfg), logger)
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. Logs go to the given logger, never stdout,
// which carries the protocol.
func New(svc *capture.Service, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("mcp-server")

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	initTool := tools.NewInitTool(svc, log)
	s.AddTool(initTool.Definition(), initTool.Handle)

	searchTool := tools.NewSearchTool(svc, log)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	updateTool := tools.NewUpdateTool(svc, log)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	projectsTool := tools.NewProjectsTool(svc.Store())
	s.AddTool(projectsTool.Definition(), projectsTool.Handle)

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(svc.Store())
	s.AddResource(resourceHandler.ProjectsResource(), resourceHandler.HandleProjects)
	s.AddResourceTemplate(resourceHandler.TreeTemplate(), resourceHandler.HandleTree)

	log.Debug("server configured", zap.String("version", Version), zap.String("base_dir", svc.Store().BasePath()))
	return s
}

// serverInstructions returns the system instructions that tell the host
// AI how to use cca effectively.
func serverInstructions() string {
	return `You have access to cca (context capturing agents), an MCP server that keeps a
knowledge tree of domains and topics for each codebase.

## Tools

- init_project: explore a codebase and write its context tree. Slow (minutes); run it
  once per project. Running it again re-explores the codebase and revises the existing
  topics; it does not delete them.
- search_context: ask a question; an agent reads the relevant topics and answers with
  references such as Security/authentication.md.
- update_context: describe a change or new fact; an agent updates, creates, deletes or
  skips topics and reports what it did.
- list_projects: see which projects have captured context.

## When to use them

- Before answering questions about an unfamiliar codebase, call search_context.
- After finishing a feature, a refactor or an architectural decision, call update_context
  with a short description so the tree stays current.
- If search_context reports that no projects exist, suggest init_project.

projectName and projectPath are optional. Without them the project is detected from the
working directory, or used directly when only one project exists.`
}
