package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// callTimeout bounds one remote tool call.
const callTimeout = 30 * time.Second

// Remote implements Provider by proxying to an external MCP server, either
// a subprocess over stdio or a streamable HTTP endpoint (such as another
// showroom's /api/v1/mcp/catalog). Tools are discovered once at connect.
type Remote struct {
	name    string
	session *mcp.ClientSession
	tools   []Tool
}

var _ Provider = (*Remote)(nil)

// DialCommand spawns an MCP server process and connects to it.
func DialCommand(ctx context.Context, name, command string, args []string) (*Remote, error) {
	transport := &mcp.CommandTransport{Command: exec.Command(command, args...)}
	return connect(ctx, name, command, transport)
}

// DialHTTP connects to a streamable HTTP MCP endpoint.
func DialHTTP(ctx context.Context, name, endpoint string) (*Remote, error) {
	transport := &mcp.StreamableClientTransport{Endpoint: endpoint}
	return connect(ctx, name, endpoint, transport)
}

func connect(ctx context.Context, name, target string, transport mcp.Transport) (*Remote, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "showroom",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server %q (%s): %w", name, target, err)
	}

	var tools []Tool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("list tools for MCP server %q: %w", name, err)
		}
		tools = append(tools, convertMCPTool(tool))
	}

	return &Remote{name: name, session: session, tools: tools}, nil
}

func (r *Remote) Name() string  { return r.name }
func (r *Remote) Tools() []Tool { return r.tools }

// Call proxies a tool invocation. The result is the tool's text content.
func (r *Remote) Call(toolName string, args map[string]any) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	result, err := r.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("call tool %q on %q: %w", toolName, r.name, err)
	}
	if result.IsError {
		return nil, fmt.Errorf("tool %q error: %s", toolName, extractTextContent(result.Content))
	}
	return extractTextContent(result.Content), nil
}

// Close shuts down the MCP session (and subprocess, if any).
func (r *Remote) Close() error {
	if r.session != nil {
		return r.session.Close()
	}
	return nil
}

func convertMCPTool(t *mcp.Tool) Tool {
	var params map[string]any
	if t.InputSchema != nil {
		// InputSchema is any; round-trip it into a map.
		if data, err := json.Marshal(t.InputSchema); err == nil {
			json.Unmarshal(data, &params)
		}
	}
	return Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}
}

func extractTextContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
