package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api"
	"studynotes/internal/app/server/config"
	"studynotes/internal/infrastructure/storage/postgres"
	"studynotes/internal/utils/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Hour
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	storage, err := postgres.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	svc, err := api.NewServices(ctx, storage, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(svc, storage.Pool(), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go cleanupSessions(ctx, svc, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("address", cfg.Server.RunAddress), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// cleanupSessions периодически удаляет просроченные сессии
func cleanupSessions(ctx context.Context, svc *api.Services, log *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Session.Cleanup(ctx); err != nil {
				log.Warn("session cleanup failed", logger.Err(err))
			}
		}
	}
}
