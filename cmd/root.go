package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands register themselves in init.
var rootCmd = &cobra.Command{
	Use:   "rental-system",
	Short: "Peer-to-peer rental marketplace API server",
	Long: `rental-system runs the peer-to-peer rental marketplace backend:
auth, item catalog, bookings with payment capture, reviews and a
websocket realtime channel.`,
}

// Execute runs the root command. It is the only entry point main calls.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
