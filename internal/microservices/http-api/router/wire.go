package router

import (
	"cookbook/internal/cache"
	"cookbook/internal/config"
	"cookbook/internal/microservices/http-api/handler"
	"cookbook/internal/microservices/http-api/middleware"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/service"
	"cookbook/internal/normalize"
	"cookbook/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Wire builds repositories, services and handlers over db and store.
// dishCache may be nil.
func Wire(cfg *config.Config, log *zap.Logger, db *gorm.DB, store storage.BlobStore, dishCache *cache.DishCache, synonyms *normalize.Table) Deps {
	resolver := service.NewResolver(synonyms)
	images := service.NewImageService(store, log.Named("images"), cfg.DeleteRetryDelay)

	authSvc := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		cfg,
		log.Named("auth"),
	)

	return Deps{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Store:   store,
		Auth:    authSvc,
		Limiter: middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Handlers: Handlers{
			Auth:           handler.NewAuthHandler(authSvc),
			Dishes:         handler.NewDishHandler(service.NewDishService(db, resolver, images, dishCache, log.Named("dishes"))),
			Ingredients:    handler.NewIngredientHandler(service.NewIngredientService(db, resolver, dishCache, log.Named("ingredients"))),
			Units:          handler.NewUnitHandler(service.NewUnitService(db, resolver, dishCache, log.Named("units"))),
			DishIngredient: handler.NewDishIngredientHandler(service.NewDishIngredientService(db, resolver, dishCache, log.Named("dish_ingredients"))),
			Grocery:        handler.NewGroceryHandler(service.NewGroceryService(db, log)),
		},
	}
}
