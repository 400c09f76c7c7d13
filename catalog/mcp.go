package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// WrapAsMCP creates an MCP server that exposes the provider's tools.
// Each tool is registered with the low-level API.
func WrapAsMCP(p Provider, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    p.Name(),
		Version: version,
	}, nil)

	for _, tool := range p.Tools() {
		srv.AddTool(
			&mcp.Tool{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.Parameters,
			},
			makeHandler(p, tool.Name),
		)
	}
	return srv
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// makeHandler creates a ToolHandler that delegates to Provider.Call.
// Results are returned as JSON text.
func makeHandler(p Provider, toolName string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return toolError("invalid arguments: %v", err), nil
			}
		}
		if args == nil {
			args = make(map[string]any)
		}

		result, err := p.Call(toolName, args)
		if err != nil {
			return toolError("error: %v", err), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return toolError("failed to marshal result: %v", err), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}
