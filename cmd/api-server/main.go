package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cookbook/database"
	"cookbook/internal/cache"
	"cookbook/internal/config"
	"cookbook/internal/logger"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/router"
	"cookbook/internal/normalize"
	"cookbook/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenSweepInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, zlog.Named("db"))
	if err != nil {
		return err
	}
	defer database.Close(db)

	synonyms := normalize.DefaultTable()
	if cfg.SynonymsFile != "" {
		if synonyms, err = normalize.LoadTable(cfg.SynonymsFile); err != nil {
			return err
		}
		zlog.Info("loaded unit synonyms", zap.String("file", cfg.SynonymsFile), zap.Int("groups", synonyms.Len()))
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	dishCache, err := cache.NewDishCache(cfg.RedisURL, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		zlog.Warn("dish cache disabled", zap.Error(err))
		dishCache = nil
	}
	defer dishCache.Close()

	engine := router.Setup(router.Wire(cfg, zlog, db, store, dishCache, synonyms))

	go sweepRefreshTokens(ctx, db, zlog)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server running",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.GoEnv),
			zap.String("storage", cfg.StorageBackend),
		)
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

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	zlog.Info("server exited")
	return nil
}

// sweepRefreshTokens drops expired refresh tokens until ctx ends.
func sweepRefreshTokens(ctx context.Context, db *gorm.DB, zlog *zap.Logger) {
	tokens := repository.NewRefreshTokenRepository(db)
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				zlog.Warn("refresh token sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zlog.Info("expired refresh tokens removed", zap.Int64("count", n))
			}
		}
	}
}
