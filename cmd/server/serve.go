package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ussd-bridge/internal/app"
	"ussd-bridge/internal/config"
	"ussd-bridge/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Init()
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	for _, issue := range cfg.Validate() {
		logger.Warn("configuration issue", map[string]any{
			"name":    issue.Name,
			"message": issue.Message,
		})
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", map[string]any{
			"error": err.Error(),
		})
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Fatal("http server failed", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	logger.Info("ussd-bridge started", map[string]any{
		"port":          cfg.AppPort,
		"store_backend": cfg.StoreBackend,
		"max_wait_ms":   cfg.MaxWait.Milliseconds(),
		"poll_ms":       cfg.PollInterval.Milliseconds(),
	})

	<-ctx.Done() // wait for Ctrl+C

	logger.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", map[string]any{
			"error": err.Error(),
		})
	}

	logger.Info("ussd-bridge stopped cleanly", nil)
	return nil
}
