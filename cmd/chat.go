package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/openfloorcontrol/showroom/agent"
	"github.com/openfloorcontrol/showroom/blueprint"
	"github.com/openfloorcontrol/showroom/chat"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	blueprintFile string
	debug         bool
	logFile       string
	useTUI        bool
	surfacesOn    bool
	endpoint      string
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Chat with the dealership agent",
	Long:  `Chat with the agent interactively, or send one prompt and exit.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bp, err := loadBlueprint(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading blueprint: %v\n", err)
			fmt.Fprintln(os.Stderr, "Create one with: showroom init")
			os.Exit(1)
		}
		if cmd.Flags().Changed("surfaces") {
			bp.Surfaces.Enabled = &surfacesOn
		}
		if endpoint != "" {
			bp.Agent.Transport = blueprint.TransportHTTP
			bp.Agent.Endpoint = endpoint
		}
		if logFile == "" {
			logFile = bp.Log.File
		}

		var initialPrompt string
		if len(args) > 0 {
			initialPrompt = args[0]
		}

		if useTUI {
			runTUI(bp, initialPrompt)
			return
		}

		frontend := chat.NewCLIFrontend(os.Stdin, os.Stdout, logFile, bp.Log.Level, debug)
		transport, err := dialAgent(bp, frontend.Logger(), os.Stderr)
		if err != nil {
			frontend.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		co := chat.NewCoordinator(bp, frontend, transport)
		if err := co.Run(initialPrompt); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// loadBlueprint reads -f. A missing default file falls back to defaults; a
// file named explicitly must exist.
func loadBlueprint(cmd *cobra.Command) (*blueprint.Blueprint, error) {
	return blueprint.Load(blueprintFile, cmd.Flags().Changed("file"))
}

// dialAgent builds the transport the blueprint asks for.
func dialAgent(bp *blueprint.Blueprint, log *logrus.Logger, stderr io.Writer) (agent.Transport, error) {
	switch bp.Agent.Transport {
	case blueprint.TransportACP:
		ctx, cancel := context.WithTimeout(context.Background(), bp.Agent.Timeout)
		defer cancel()
		return agent.DialACP(ctx, agent.ACPConfig{
			Command: bp.Agent.Command,
			Args:    bp.Agent.Args,
			Env:     bp.Agent.Env,
			Version: version,
			Stderr:  stderr,
			Log:     log,
		})
	default:
		log.WithField("endpoint", bp.Agent.Endpoint).Debug("using http transport")
		return agent.NewClient(bp.Agent.Endpoint, uuid.NewString()), nil
	}
}

func runTUI(bp *blueprint.Blueprint, initialPrompt string) {
	frontend, model := chat.NewTUIFrontend(logFile, bp.Log.Level, debug)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	frontend.SetProgram(p)

	// Agent subprocess stderr goes to the log file (or nowhere) so it cannot
	// corrupt the Bubble Tea display.
	var stderrWriter io.Writer = io.Discard
	if lw := frontend.LogWriter(); lw != nil {
		stderrWriter = lw
	}
	transport, err := dialAgent(bp, frontend.Logger(), stderrWriter)
	if err != nil {
		frontend.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	co := chat.NewCoordinator(bp, frontend, transport)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if err := co.Run(initialPrompt); err != nil {
			p.Send(chat.SystemInfo{Text: fmt.Sprintf("[ERROR: %v]", err)})
		}
		p.Send(chat.SessionStopped{})
	}()

	// Bubble Tea owns the main thread
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}

	// Give the coordinator a moment to close the transport.
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
	}
}

func init() {
	chatCmd.Flags().StringVarP(&blueprintFile, "file", "f", blueprint.DefaultFile, "Blueprint file")
	chatCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug output")
	chatCmd.Flags().StringVar(&logFile, "log", "", "Log output to file (plain text, no colors)")
	chatCmd.Flags().BoolVar(&useTUI, "tui", false, "Use terminal UI with split layout")
	chatCmd.Flags().BoolVar(&surfacesOn, "surfaces", true, "Render surfaces instead of their text fallback")
	chatCmd.Flags().StringVar(&endpoint, "endpoint", "", "Agent base URL (overrides the blueprint, implies http)")
}
