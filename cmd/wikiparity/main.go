// Package main provides the wikiparity command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wikiparity/wikiparity/config"
	"github.com/wikiparity/wikiparity/logger"
	"github.com/wikiparity/wikiparity/version"
)

// cfg holds the loaded configuration. PersistentPreRunE populates it before
// any subcommand runs.
var cfg *config.Config

func main() {
	defer logger.Sync()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCommand builds the root command with all subcommands attached.
func newRootCommand() *cobra.Command {
	var configPath string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "wikiparity",
		Short: "Compare two Wikidata entities",
		Long: `wikiparity fetches entity data from the Wikidata Action API and compares
two entities on their shared properties. Results are printed as console
tables and written as data files, diagrams and a run report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if logLevel != "" {
				loaded.Logging.Level = logLevel
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded

			if cfg.Logging.File != "" {
				logger.SetLogPath(cfg.Logging.File)
			}
			logger.SetLevel(cfg.Logging.Level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a wikiparity.yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newCompareCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of wikiparity",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	}
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nCancelling operation...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
