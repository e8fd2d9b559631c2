// Package mcp provides an MCP server that exposes the task functions.
package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/pal/internal/models"
)

// functionSpecToMCPTool converts a models.FunctionSpec to an mcp.Tool with JSON Schema.
func functionSpecToMCPTool(spec models.FunctionSpec) *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		InputSchema: spec.JSONSchema(),
	}
}
