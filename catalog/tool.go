// Package catalog is the vehicle inventory behind the simulated agent. It
// exposes named tools that can be called directly or served over MCP.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tool describes a single capability offered by a provider.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// Provider is anything that offers named tools: the local catalog, or a
// remote MCP server standing in for it.
type Provider interface {
	// Name returns the provider identifier (e.g. "catalog").
	Name() string

	// Tools returns the list of tools this provider offers.
	Tools() []Tool

	// Call invokes a tool by name with JSON-compatible arguments.
	// Returns a JSON-serializable result.
	Call(toolName string, args map[string]any) (any, error)
}

// ErrUnknownTool is returned when a tool name is not recognized.
type ErrUnknownTool struct {
	Provider string
	Tool     string
}

func (e *ErrUnknownTool) Error() string {
	return fmt.Sprintf("provider %q has no tool %q", e.Provider, e.Tool)
}

// CallInto calls a tool and decodes its result into out. Results that are
// already JSON text (from a remote provider) are decoded as is.
func CallInto(p Provider, toolName string, args map[string]any, out any) error {
	result, err := p.Call(toolName, args)
	if err != nil {
		return err
	}
	var data []byte
	switch v := result.(type) {
	case string:
		data = []byte(v)
	case json.RawMessage:
		data = v
	default:
		if data, err = json.Marshal(v); err != nil {
			return fmt.Errorf("marshal %s result: %w", toolName, err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s result: %w", toolName, err)
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprint(int64(v))
	case json.Number:
		return v.String()
	}
	return ""
}

// ParseAmount reads a dollar amount such as "$26,000" or "26000.50".
// Unparseable text is 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func numberArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		return ParseAmount(v)
	}
	return 0
}

func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case float64:
				out = append(out, fmt.Sprint(int64(s)))
			}
		}
		return out
	}
	return nil
}
