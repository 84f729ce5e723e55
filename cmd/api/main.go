package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/app"
	"github.com/Udhayakumar116/ai-question-gen/internal/config"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg := config.LoadConfig()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("detail", w))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("shut down cleanly")
}
