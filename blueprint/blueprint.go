// Package blueprint loads showroom.yaml.
package blueprint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the blueprint looked up when none is named.
const DefaultFile = "showroom.yaml"

// Transport names.
const (
	TransportHTTP = "http"
	TransportACP  = "acp"
)

// Agent describes how to reach the conversational agent.
type Agent struct {
	Transport string            `yaml:"transport"`
	Endpoint  string            `yaml:"endpoint"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args"`
	Env       map[string]string `yaml:"env"`
	Timeout   time.Duration     `yaml:"timeout"`
}

// Surfaces controls structured rendering.
type Surfaces struct {
	Enabled *bool `yaml:"enabled"`
}

// Log configures the structured log file.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Server configures the simulated agent served by `showroom serve`.
type Server struct {
	Addr string `yaml:"addr"`
	MCP  *bool  `yaml:"mcp"`
}

// Vehicle is a catalog entry for the simulated agent.
type Vehicle struct {
	ID       string   `yaml:"id"`
	Make     string   `yaml:"make"`
	Model    string   `yaml:"model"`
	Year     int      `yaml:"year"`
	Price    int      `yaml:"price"`
	Color    string   `yaml:"color"`
	Type     string   `yaml:"type"`
	Features []string `yaml:"features"`
	Image    string   `yaml:"image"`
}

// Blueprint is a complete showroom configuration.
type Blueprint struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Agent       Agent     `yaml:"agent"`
	Surfaces    Surfaces  `yaml:"surfaces"`
	Log         Log       `yaml:"log"`
	Server      Server    `yaml:"server"`
	Catalog     []Vehicle `yaml:"catalog"`
}

// SurfacesEnabled reports whether surfaces render as UI (default true).
func (bp *Blueprint) SurfacesEnabled() bool {
	return bp.Surfaces.Enabled == nil || *bp.Surfaces.Enabled
}

// MCPEnabled reports whether the catalog is published over MCP (default true).
func (bp *Blueprint) MCPEnabled() bool {
	return bp.Server.MCP == nil || *bp.Server.MCP
}

// Default returns the configuration used when no file exists.
func Default() *Blueprint {
	bp := &Blueprint{Name: "showroom"}
	bp.applyDefaults()
	return bp
}

// Load reads a blueprint from a YAML file. A missing file yields Default
// unless required is set.
func Load(path string, required bool) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a blueprint and applies defaults.
func Parse(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("parse blueprint: %w", err)
	}
	bp.applyDefaults()
	if err := bp.validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

func (bp *Blueprint) applyDefaults() {
	if bp.Name == "" {
		bp.Name = "showroom"
	}
	if bp.Agent.Transport == "" {
		bp.Agent.Transport = TransportHTTP
	}
	if bp.Agent.Endpoint == "" {
		bp.Agent.Endpoint = "http://localhost:8000"
	}
	if bp.Agent.Timeout == 0 {
		bp.Agent.Timeout = 60 * time.Second
	}
	if bp.Log.Level == "" {
		bp.Log.Level = "info"
	}
	if bp.Server.Addr == "" {
		bp.Server.Addr = ":8000"
	}
	for i := range bp.Catalog {
		v := &bp.Catalog[i]
		if v.ID == "" {
			v.ID = fmt.Sprint(i + 1)
		}
	}
}

func (bp *Blueprint) validate() error {
	switch bp.Agent.Transport {
	case TransportHTTP:
	case TransportACP:
		if bp.Agent.Command == "" {
			return fmt.Errorf("agent transport %q needs a command", TransportACP)
		}
	default:
		return fmt.Errorf("unknown agent transport %q", bp.Agent.Transport)
	}
	return nil
}
