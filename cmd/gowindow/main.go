package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/gowindow/internal/config"
	"github.com/i474232898/gowindow/internal/log"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCommand builds the CLI. Configuration is loaded once before any subcommand runs.
func rootCommand() *cobra.Command {
	cfg := &config.AppConfig{}

	rootCmd := &cobra.Command{
		Use:          "gowindow",
		Short:        "Ski and dog-walk forecast windows",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if err := log.Init(loaded.LogDebug); err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}

	serveCmd := serveCommand(cfg)
	rootCmd.AddCommand(serveCmd, forecastCommand(cfg))

	// Running without a subcommand serves the API.
	rootCmd.RunE = serveCmd.RunE

	return rootCmd
}
