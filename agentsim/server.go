// Package agentsim is a keyword-routed stand-in for the dealership agent.
// It answers POST /chat with prose or surface envelopes built from the
// vehicle catalog, and publishes the catalog tools over MCP.
package agentsim

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openfloorcontrol/showroom/agent"
	"github.com/openfloorcontrol/showroom/catalog"
	"github.com/openfloorcontrol/showroom/surface"
	"github.com/sirupsen/logrus"
)

// AgentName is reported by /health.
const AgentName = "showroom"

// MCPPath is where the catalog tools are served.
const MCPPath = "/api/v1/mcp/catalog"

// Request is the body of POST /chat. Event may replace Query.
type Request struct {
	Query     string               `json:"query"`
	SessionID string               `json:"session_id"`
	Event     *surface.ClientEvent `json:"event,omitempty"`
}

// Response is the body returned by POST /chat.
type Response struct {
	Text string          `json:"text"`
	Data json.RawMessage `json:"data"`
}

// Config configures a Server.
type Config struct {
	// Tools answers catalog queries. Defaults to Catalog.
	Tools catalog.Provider
	// Catalog resolves cars named in free text.
	Catalog *catalog.Catalog
	// MCP publishes Tools at MCPPath.
	MCP     bool
	Version string
	Log     *logrus.Logger
}

// Server serves the simulated agent over HTTP.
type Server struct {
	echo     *echo.Echo
	listener net.Listener
	router   *Router
	log      *logrus.Logger
}

// NewServer creates a server. Nothing listens until Start.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Tools == nil {
		cfg.Tools = cfg.Catalog
	}
	if cfg.Log == nil {
		cfg.Log = logrus.New()
		cfg.Log.SetFormatter(&logrus.JSONFormatter{})
	}

	router, err := NewRouter(cfg.Tools, cfg.Catalog, cfg.Log.WithField("component", "router"))
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s := &Server{echo: e, router: router, log: cfg.Log}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := cfg.Log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))

	e.POST("/chat", s.handleChat)
	e.GET("/health", s.handleHealth)

	if cfg.MCP {
		version := cfg.Version
		if version == "" {
			version = "dev"
		}
		s.mountMCP(MCPPath, catalog.WrapAsMCP(cfg.Tools, version))
	}
	return s, nil
}

func (s *Server) mountMCP(path string, mcpSrv *mcp.Server) {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return mcpSrv
	}, &mcp.StreamableHTTPOptions{Stateless: true})
	s.echo.Any(path, echo.WrapHandler(handler))
	s.echo.Any(path+"/", echo.WrapHandler(handler))
}

func (s *Server) handleChat(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	text := req.Query
	if req.Event != nil {
		text = agent.FormatEvent(*req.Event)
	}
	if strings.TrimSpace(text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query or event is required")
	}

	s.log.WithFields(logrus.Fields{
		"session": req.SessionID,
		"event":   req.Event != nil,
	}).Info("chat")

	reply, err := s.router.Respond(text)
	if err != nil {
		s.log.WithError(err).Error("respond")
		return c.JSON(http.StatusOK, Response{Text: "Error: " + err.Error()})
	}
	return c.JSON(http.StatusOK, Response{Text: reply})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "agent": AgentName})
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler { return s.echo }

// Start begins listening in a background goroutine. Pass ":0" for an
// auto-assigned port.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.echo.Listener = ln
	go func() {
		if err := s.echo.Start(""); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("server stopped")
		}
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("listening")
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// BaseURL returns the base URL of the running server.
func (s *Server) BaseURL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
