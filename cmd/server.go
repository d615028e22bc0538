package cmd

import (
	"CrateFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the catalog HTTP server",
	Long:  "Starts the HTTP server, runs the startup sync and serves the catalog API.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
