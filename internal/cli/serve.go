package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/feedbackboard/internal/factory"
	"github.com/mcoot/feedbackboard/internal/server"
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), e)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "Listen host (env: FEEDBACK_HOST)")
	flags.Int("port", 8080, "Listen port (env: FEEDBACK_PORT)")
	flags.String("flash-store", "cookie", "Flash message store: cookie, redis (env: FEEDBACK_FLASH_STORE)")
	flags.String("redis-url", "redis://localhost:6379", "Redis URL for the redis flash store (env: FEEDBACK_REDIS_URL)")
	flags.String("static-dir", "", "Static files directory (env: FEEDBACK_STATIC_DIR)")
	flags.Bool("secure-cookies", false, "Mark cookies HTTPS-only (env: FEEDBACK_SECURE_COOKIES)")
	bindFlags(e.v, flags, map[string]string{
		"host":           "host",
		"port":           "port",
		"flash_store":    "flash-store",
		"redis_url":      "redis-url",
		"static_dir":     "static-dir",
		"secure_cookies": "secure-cookies",
	})

	return cmd
}

func runServe(ctx context.Context, e *env) error {
	logger := e.logger

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, e.factoryConfig())
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	staticDir := e.cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Host = e.cfg.Host
	serverConfig.Port = e.cfg.Port
	srv := server.New(app.Handler(staticDir), serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("server started",
		slog.String("addr", srv.Addr()),
		slog.String("storage", e.cfg.Storage),
		slog.String("flash_store", e.cfg.FlashStore),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// findStaticDir looks for the static files directory. Returns "" if there is none.
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
