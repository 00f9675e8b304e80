// Package tools implements the MCP tool handlers cca exposes to hosts.
//
// Each tool receives its dependencies via its struct and returns a
// handler compatible with mcp-go's CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on the Capturer interface, not on capture.Service
// - Failures are reported as error results, never as Go errors
package tools

import (
	"context"

	"github.com/HendryAvila/cca/internal/capture"
	"go.uber.org/zap"
)

// Capturer is the slice of capture.Service the tools call.
type Capturer interface {
	InitProject(ctx context.Context, path string) capture.InitResult
	SearchContext(ctx context.Context, p capture.SearchParams) capture.SearchResult
	UpdateContext(ctx context.Context, p capture.UpdateParams) capture.UpdateResult
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
