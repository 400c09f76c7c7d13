package cmd

import (
	"fmt"
	"os"

	"github.com/openfloorcontrol/showroom/blueprint"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new showroom.yaml",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := "my-showroom"
		if len(args) > 0 {
			name = args[0]
		}

		filename := blueprint.DefaultFile
		if _, err := os.Stat(filename); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists\n", filename)
			os.Exit(1)
		}

		template := fmt.Sprintf(`# Showroom - %s
# Start the demo agent: showroom serve
# Then chat with it:    showroom chat --tui

name: %s
description: "Describe your dealership here"

agent:
  transport: http            # http or acp
  endpoint: http://localhost:8000
  timeout: 60s
  # For an ACP agent subprocess:
  # transport: acp
  # command: my-agent
  # args: ["--acp"]
  # env:
  #   API_KEY: ${API_KEY}

surfaces:
  enabled: true              # false shows surfaces as text

log:
  level: info
  # file: showroom.log

server:
  addr: ":8000"
  mcp: true                  # publish the catalog at /api/v1/mcp/catalog

# Inventory for the demo agent. Leave empty for the built-in cars.
catalog: []
#  - make: Toyota
#    model: Camry
#    year: 2024
#    price: 28400
#    type: Sedan
#    features: ["Reliability", "Hybrid option"]
`, name, name)

		if _, err := blueprint.Parse([]byte(template)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: template is invalid: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(filename, []byte(template), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", filename, err)
			os.Exit(1)
		}

		fmt.Printf("Created %s\n", filename)
		fmt.Println("Run with: showroom serve & showroom chat")
	},
}
