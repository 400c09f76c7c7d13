package cmd

import (
	"github.com/spf13/cobra"
)

// version is reported to agents and MCP clients.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "showroom",
	Short: "Showroom - generative UI chat for car dealerships",
	Long:  `Chat with a dealership agent whose replies render as interactive tables, comparisons and booking forms.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
}
