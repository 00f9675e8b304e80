// Package agent drives a reasoning model through a tool-calling loop.
//
// Tools share the shape of MCP tool handlers: a definition plus a handler
// taking a CallToolRequest. The same tool can therefore be served to an
// MCP host or handed to an agent without adaptation.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
)

// Tool is one capability an agent may invoke.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// ResultText extracts the text content from a tool result.
func ResultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// Observation renders a tool result the way the model sees it: failed
// results are prefixed with "Error: ".
func Observation(r *mcp.CallToolResult) string {
	text := ResultText(r)
	if r != nil && r.IsError {
		return "Error: " + text
	}
	return text
}

// toolDefinition converts an MCP tool definition to the function
// definition sent to the model.
func toolDefinition(def mcp.Tool) (llms.Tool, error) {
	var raw []byte
	var err error
	if len(def.RawInputSchema) > 0 {
		raw = def.RawInputSchema
	} else {
		raw, err = json.Marshal(def.InputSchema)
		if err != nil {
			return llms.Tool{}, fmt.Errorf("encoding schema of %s: %w", def.Name, err)
		}
	}

	params := map[string]any{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return llms.Tool{}, fmt.Errorf("decoding schema of %s: %w", def.Name, err)
	}
	params["type"] = "object"
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}

	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		},
	}, nil
}
