package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	googlemonitoring "github.com/MamunCrafts/ai-simplified-by-mamun/googleMonitoring"
	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/handlers"
	"github.com/MamunCrafts/ai-simplified-by-mamun/localratelimiter"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
	"github.com/MamunCrafts/ai-simplified-by-mamun/supabase"
)

type serveOptions struct {
	port int
}

func newServeCmd(rootOpts *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Routes:
  - POST /api/refine      refine a prompt
  - GET  /health          liveness and provider status
  - GET  /metrics         prometheus metrics
  - /api/library, /api/prompts/:id, /api/me/...
                          prompt library, mounted when Supabase is configured

Examples:
  ai-simplified serve                 # port from config (default 8080)
  ai-simplified serve --port 3000
  ai-simplified --env production serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, opts)
		},
	}

	serveCmd.Flags().IntVar(&opts.port, "port", 0, "port to listen on (overrides server.port)")
	return serveCmd
}

func runServe(ctx context.Context, rootOpts *rootOptions, opts *serveOptions) error {
	cfg, err := config.LoadConfig(rootOpts.env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}

	logger := newLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	monitoringClient, err := googlemonitoring.NewMonitoringClient(ctx, cfg.GoogleService)
	if err != nil {
		return fmt.Errorf("failed to create monitoring client: %w", err)
	}
	defer monitoringClient.Close()
	go monitoringClient.Run(ctx, cfg.GoogleService.PushInterval)

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	if !generator.Configured() {
		logger.Warn("refine provider has no credential, /api/refine will answer 500", "provider", generator.Name())
	}

	refineLimiter := localratelimiter.NewRateLimiter(cfg.RateLimit.Refine)
	defer refineLimiter.Close()

	refineService := refiner.NewService(generator,
		refiner.WithTimeout(cfg.Refine.Timeout),
		refiner.WithLimiter(refineLimiter),
		refiner.WithRecorder(monitoringClient),
		refiner.WithLogger(logger),
	)

	deps := handlers.RouterDeps{
		RefineService: refineService,
		Provider:      generator.Name(),
		Metrics:       monitoringClient.Handler(),
		Logger:        logger,
	}

	supabaseClient := supabase.NewSupabaseClient(cfg.Clients.Supabase)
	if supabaseClient.Configured() {
		libraryLimiter := localratelimiter.NewRateLimiter(cfg.RateLimit.Library)
		defer libraryLimiter.Close()
		deps.Library = supabaseClient
		deps.LibraryLimiter = libraryLimiter.RateLimiterMiddleware()
	} else {
		logger.Info("supabase not configured, library routes disabled")
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", httpServer.Addr, "provider", generator.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
