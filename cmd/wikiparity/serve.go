package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wikiparity/wikiparity/api"
	"github.com/wikiparity/wikiparity/config"
	"github.com/wikiparity/wikiparity/logger"
)

// newServeCommand creates the serve command.
func newServeCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve [folder]",
		Short: "Serve a finished comparison run over HTTP",
		Long: `Serve exposes the output folder of a previous run over HTTP: the HTML
report as the index page, the rendered diagrams as static files and the
run data as JSON under /api.`,
		Example: `  wikiparity serve
  wikiparity serve ./wikidata_data --port 8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			dir := cfg.Output.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, cancel := signalContext()
			defer cancel()
			return runServer(ctx, cfg, dir)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to bind")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on")

	return cmd
}

// runServer blocks serving dir until ctx is cancelled.
func runServer(ctx context.Context, cfg *config.Config, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("output folder %s does not exist; run a comparison first", dir)
	}

	server := api.NewServer(api.ServerOptions{
		Host:      cfg.Server.Host,
		Port:      strconv.Itoa(cfg.Server.Port),
		OutputDir: dir,
		Logger:    logger.GetLogger(),
	})
	return server.Start(ctx)
}
