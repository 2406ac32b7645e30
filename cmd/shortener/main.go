package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/auth"
	"github.com/mmeshcher/scissors/internal/config"
	"github.com/mmeshcher/scissors/internal/handler"
	"github.com/mmeshcher/scissors/internal/keygen"
	"github.com/mmeshcher/scissors/internal/repository"
	"github.com/mmeshcher/scissors/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	sugar.Infow(
		"Starting URL shortener service",
	)

	cfg, err := config.ParseFlags()
	if err != nil {
		sugar.Fatalw("Configuration error",
			"error", err.Error())
	}

	sugar.Infow(
		"Configuration loaded",
		"server_address", cfg.ServerAddress,
		"base_url", cfg.BaseURL,
		"file_storage_path", cfg.FileStoragePath,
		"database", cfg.DatabaseDSN != "",
		"key_length", cfg.KeyLength,
		"key_attempts", cfg.KeyAttempts,
	)

	if cfg.SecretKey == config.DefaultSecretKey {
		sugar.Warnw("Using the built-in development secret key, set SECRET_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.DatabaseDSN, cfg.FileStoragePath, logger)
	if err != nil {
		sugar.Fatalw("Failed to open storage", "error", err.Error())
	}
	defer repo.Close()

	keys := keygen.NewGenerator(cfg.KeyLength, cfg.KeyAttempts)
	shortenerService := service.NewShortenerService(repo, keys, cfg.BaseURL, logger)
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)

	h := handler.NewHandler(shortenerService, tokens, logger)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		sugar.Infow(
			"Server starting",
			"address", cfg.ServerAddress,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			sugar.Errorw(err.Error(), "event", "start server")
		}
	case <-ctx.Done():
		sugar.Infow("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown failed", "error", err.Error())
	}

	sugar.Infow("Server stopped")
}
