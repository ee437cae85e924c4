package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"xivttw/internal/app"
	"xivttw/internal/config"
	"xivttw/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Run(ctx); err != nil {
			log.Error("server failed to start", slog.String("error", err.Error()))
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("shutting down server")
	cancel()

	if err := application.Shutdown(); err != nil {
		log.Error("error during shutdown", slog.String("error", err.Error()))
	}
	log.Info("server gracefully stopped")
}
