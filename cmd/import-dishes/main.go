package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookbook/database"
	"cookbook/internal/config"
	"cookbook/internal/logger"
	"cookbook/internal/microservices/http-api/service"
	"cookbook/internal/normalize"
	"cookbook/internal/storage"

	"go.uber.org/zap"
)

// Usage: import-dishes [recipes.yaml]
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	file := "recipes.yaml"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(file)
	if err != nil {
		zlog.Fatal("failed to read recipe file", zap.String("file", file), zap.Error(err))
	}
	recipes, err := parseRecipes(data)
	if err != nil {
		zlog.Fatal("failed to parse recipe file", zap.String("file", file), zap.Error(err))
	}
	zlog.Info("loaded recipes", zap.String("file", file), zap.Int("count", len(recipes)))

	db, err := database.Connect(cfg, zlog.Named("db"))
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	synonyms := normalize.DefaultTable()
	if cfg.SynonymsFile != "" {
		if synonyms, err = normalize.LoadTable(cfg.SynonymsFile); err != nil {
			zlog.Fatal("failed to load synonyms", zap.Error(err))
		}
	}
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.Error(err))
	}

	images := service.NewImageService(store, zlog.Named("images"), cfg.DeleteRetryDelay)
	im := &importer{
		dishes: service.NewDishService(db, service.NewResolver(synonyms), images, nil, zlog),
		log:    zlog.Named("import"),
	}

	start := time.Now()
	res, err := im.Run(ctx, recipes)
	if err != nil {
		zlog.Fatal("import aborted", zap.Int("imported", res.Imported), zap.Error(err))
	}
	zlog.Info("import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Duration("took", time.Since(start)),
	)
}
