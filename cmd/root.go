package cmd

import (
	"fmt"
	"os"

	"CrateFM/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cratefm",
	Short: "CrateFM personal vinyl catalog manager",
	Long: `CrateFM keeps a personal record collection in sync with an external
catalog service, caches a full local snapshot for offline-first startup
and serves browseable artist/track/role views over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(logLevel),
			OutputPath: logFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	},
}

var (
	logLevel string
	logFile  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "optional log file path (rotated)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
