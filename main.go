package main

import (
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	a, err := newApplication(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := a.startConsumer(); err != nil {
		log.Error("failed to start order event consumer", zap.Error(err))
	}

	log.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.app.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := a.app.Shutdown(); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	if err := a.close(); err != nil {
		log.Error("error releasing resources", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}
