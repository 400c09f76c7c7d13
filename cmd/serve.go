package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openfloorcontrol/showroom/agentsim"
	"github.com/openfloorcontrol/showroom/blueprint"
	"github.com/openfloorcontrol/showroom/catalog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	catalogMCP string
	serveMCP   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulated dealership agent",
	Long: `Serve the simulated agent over HTTP (POST /chat, GET /health).
The vehicle catalog is published over MCP at ` + agentsim.MCPPath + ` unless disabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bp, err := loadBlueprint(cmd)
		if err != nil {
			return fmt.Errorf("load blueprint: %w", err)
		}
		addr := bp.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		mcpOn := bp.MCPEnabled()
		if cmd.Flags().Changed("mcp") {
			mcpOn = serveMCP
		}

		log := logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetOutput(os.Stderr)
		if level, err := logrus.ParseLevel(bp.Log.Level); err == nil {
			log.SetLevel(level)
		}
		if debug {
			log.SetLevel(logrus.DebugLevel)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := agentsim.Config{
			Catalog: catalog.FromBlueprint(bp),
			MCP:     mcpOn,
			Version: version,
			Log:     log,
		}
		if catalogMCP != "" {
			remote, err := dialCatalog(ctx, catalogMCP)
			if err != nil {
				return fmt.Errorf("connect catalog: %w", err)
			}
			defer remote.Close()
			cfg.Tools = remote
			log.WithField("source", catalogMCP).Info("using remote catalog")
		}

		srv, err := agentsim.NewServer(cfg)
		if err != nil {
			return err
		}
		if err := srv.Start(addr); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"url": srv.BaseURL(), "mcp": mcpOn}).Info("showroom agent ready")

		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

// dialCatalog connects to a catalog MCP server by URL or command line.
func dialCatalog(ctx context.Context, source string) (*catalog.Remote, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return catalog.DialHTTP(ctx, "catalog", source)
	}
	fields := strings.Fields(source)
	return catalog.DialCommand(ctx, "catalog", fields[0], fields[1:])
}

func init() {
	serveCmd.Flags().StringVarP(&blueprintFile, "file", "f", blueprint.DefaultFile, "Blueprint file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", true, "Publish the catalog tools over MCP")
	serveCmd.Flags().StringVar(&catalogMCP, "catalog-mcp", "", "Use an external catalog MCP server (URL or command)")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
