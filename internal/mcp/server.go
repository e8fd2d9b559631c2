package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/pal/internal/assistant"
	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/models"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// NewMCPServer creates an MCP server exposing the task functions through
// dispatcher. If filter is non-empty, only the comma-separated function names
// it lists are exposed.
func NewMCPServer(dispatcher *assistant.Dispatcher, filter string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "pal",
		Version: Version,
	}, nil)

	for _, spec := range models.FunctionSpecs {
		if filter != "" && !matchesFilter(spec.Name, filter) {
			continue
		}

		name := spec.Name
		server.AddTool(functionSpecToMCPTool(spec), func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			args, err := decodeArguments(req.Params.Arguments)
			if err != nil {
				return errorResult("invalid arguments: " + err.Error()), nil
			}

			ctx = events.ContextWithRequestID(ctx, "mcp_"+uuid.NewString()[:8])
			result, err := dispatcher.Invoke(ctx, name, args)
			if err != nil {
				slog.Debug("mcp tool error", "tool", name, "error", err)
				return errorResult(assistant.FailureText(name, err)), nil
			}
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: result}},
			}, nil
		})

		slog.Debug("mcp tool registered", "tool", name)
	}

	return server
}

func errorResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

// decodeArguments keeps numbers as json.Number so integer ids survive intact.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return args, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// matchesFilter checks if a function name is listed in the comma-separated filter.
func matchesFilter(name, filter string) bool {
	for _, f := range strings.Split(filter, ",") {
		if strings.TrimSpace(f) == name {
			return true
		}
	}
	return false
}
