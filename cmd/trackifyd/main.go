package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/backend"
	"github.com/spec-kit/trackify/internal/config"
	"github.com/spec-kit/trackify/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	server := backend.NewServer(cfg, logger)

	if cfg.App.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.App.SeedFile)
		if err != nil {
			logger.Fatal("failed to load seed", zap.Error(err))
		}
		if err := server.Seed(seed); err != nil {
			logger.Fatal("failed to apply seed", zap.Error(err))
		}
		logger.Info("seed applied",
			zap.Int("users", len(seed.Users)),
			zap.Int("serviceCenters", len(seed.ServiceCenters)),
		)
	}

	go func() {
		logger.Info("listening",
			zap.String("api", cfg.App.Addr()),
			zap.String("push", cfg.App.PushAddr()),
		)
		if err := server.Run(); err != nil {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
