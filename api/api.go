// Package api serves a finished comparison run over HTTP.
package api

import (
	"context"
	"net"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/wikiparity/wikiparity/report"
	"github.com/wikiparity/wikiparity/version"
)

// ServerOptions configures the report server.
type ServerOptions struct {
	// Host and Port form the listen address.
	Host string
	Port string

	// OutputDir is the folder a comparison run wrote its files to. It is
	// served statically so the report and diagram pages are browsable.
	OutputDir string

	// Prefork spawns one process per CPU. Left off for serving local runs.
	Prefork bool

	// Logger for structured logging.
	Logger *zap.Logger
}

// Server holds the Fiber app instance
type Server struct {
	app    *fiber.App
	opts   ServerOptions
	logger *zap.Logger
}

// NewServer initializes a new Fiber instance serving the run in opts.OutputDir.
func NewServer(opts ServerOptions) *Server {
	if opts.Port == "" {
		opts.Port = "3000" // Default port
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:  10 * time.Second, // Prevents idle connections
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Prefork:      opts.Prefork,
	})

	// Middleware
	app.Use(recover.New()) // Auto-recovers from panics
	app.Use(logger.New())  // Logs all requests

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Wikiparity API",
			"version": version.Version,
			"build":   version.BuildDate,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	reportPath := filepath.Join(opts.OutputDir, report.JSONReportFile)

	app.Get("/api/report", func(c *fiber.Ctx) error {
		run, err := report.ReportFromFilePath(reportPath)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no run report found in the output folder")
		}
		return c.JSON(run)
	})

	app.Get("/api/summary", func(c *fiber.Ctx) error {
		run, err := report.ReportFromFilePath(reportPath)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no run report found in the output folder")
		}
		return c.JSON(run.Summary)
	})

	// The output folder itself, so report.html and the diagrams resolve.
	if opts.OutputDir != "" {
		app.Static("/", opts.OutputDir, fiber.Static{
			Browse: true,
			Index:  report.HTMLReportFile,
		})
	}

	return &Server{app: app, opts: opts, logger: log}
}

// GetApp exposes the underlying Fiber app, mainly for tests.
func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Start runs the Fiber server until ctx is cancelled, then shuts it down.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.opts.Host, s.opts.Port)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving comparison run",
			zap.String("address", addr),
			zap.String("output_dir", s.opts.OutputDir))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down report server")

	// Give in-flight requests a moment to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}

	s.logger.Info("Report server stopped")
	return nil
}

// Shutdown stops the server immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
