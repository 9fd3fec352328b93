package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "presentation-service",
	Short: "Presentation sync server: shared slideshow state over WebSocket",
	Long:  `HTTP + WebSocket API for synchronized slide presentations. Commands: api, remote, command.`,
	RunE:  runAPI, // default: run API (same as "presentation-service api")
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(commandCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
