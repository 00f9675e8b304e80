// Package surfaces provides the tool sets handed to each agent.
//
// Each tool handler follows the same pattern as the MCP tools:
// - A struct with its dependencies (a Binding) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tools report failures as error results (IsError) rather than Go errors;
// the agent runner turns those into "Error: ..." observations.
package surfaces

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/source"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Limits bound what tools read from the codebase.
type Limits struct {
	MaxReadBytes int64
	PreviewChars int
}

// DefaultLimits are used when a Binding leaves Limits zero.
var DefaultLimits = Limits{MaxReadBytes: 100 * 1024, PreviewChars: 10000}

// Binding is the context every tool of one agent run shares: one store,
// one project and, for tools that read code, one codebase root.
type Binding struct {
	Store   *knowledge.Store
	Project string
	Source  *source.Root
	Limits  Limits
	Logger  *zap.Logger
}

func (b Binding) withDefaults(surface string) Binding {
	if b.Limits.MaxReadBytes <= 0 {
		b.Limits.MaxReadBytes = DefaultLimits.MaxReadBytes
	}
	if b.Limits.PreviewChars <= 0 {
		b.Limits.PreviewChars = DefaultLimits.PreviewChars
	}
	if b.Logger == nil {
		b.Logger = zap.NewNop()
	}
	b.Logger = b.Logger.Named("tools." + surface).With(zap.String("project", b.Project))
	return b
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// requireArgs returns an error result naming the first empty argument.
func requireArgs(req mcp.CallToolRequest, keys ...string) *mcp.CallToolResult {
	for _, k := range keys {
		if strings.TrimSpace(req.GetString(k, "")) == "" {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' is required", k))
		}
	}
	return nil
}

// contentArg returns the "content" argument. Unlike names, content may
// legitimately be empty, so only its presence is checked.
func contentArg(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return v, nil
}

// ref renders a topic the way tool messages refer to it.
func ref(domain, topic string) string {
	return domain + "/" + topic + knowledge.TopicExt
}

// sourceError maps source-access failures to the messages agents see.
func sourceError(err error, what, path string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, source.ErrOutOfBounds):
		return mcp.NewToolResultError(fmt.Sprintf("Cannot %s outside the project directory.", what))
	case errors.Is(err, source.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("%q does not exist.", path))
	case errors.Is(err, source.ErrIsDirectory):
		return mcp.NewToolResultError(fmt.Sprintf("%q is a directory, not a file.", path))
	case errors.Is(err, source.ErrNotDirectory):
		return mcp.NewToolResultError(fmt.Sprintf("%q is not a directory.", path))
	case errors.Is(err, source.ErrFileTooLarge):
		var tl *source.TooLargeError
		if errors.As(err, &tl) {
			return mcp.NewToolResultError(fmt.Sprintf("File %q is too large (%dKB). Maximum size is %dKB.",
				path, (tl.Size+512)/1024, tl.Max/1024))
		}
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, source.ErrBadPattern):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Could not %s %q: %v", what, path, err))
	}
}

// noSource is returned by code-reading tools when no codebase is bound.
func noSource() *mcp.CallToolResult {
	return mcp.NewToolResultError("No project codebase is available for this run.")
}
