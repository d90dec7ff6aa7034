// Package router assembles the gin engine for the cookbook API.
package router

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"cookbook/internal/config"
	"cookbook/internal/microservices/http-api/handler"
	"cookbook/internal/microservices/http-api/middleware"
	"cookbook/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxBodySize caps multipart bodies carrying a cover and step images.
const maxBodySize = 64 << 20

type Handlers struct {
	Auth           *handler.AuthHandler
	Dishes         *handler.DishHandler
	Ingredients    *handler.IngredientHandler
	Units          *handler.UnitHandler
	DishIngredient *handler.DishIngredientHandler
	Grocery        *handler.GroceryHandler
}

type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Store    storage.BlobStore
	Auth     middleware.TokenValidator
	Limiter  *middleware.IPRateLimiter
	Handlers Handlers
}

type registrar interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}

// Setup builds the engine. Reads are public; writes need a bearer token
// and are rate limited per client IP.
func Setup(d Deps) *gin.Engine {
	if !d.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(d.Log))
	r.Use(requestid.New())
	r.Use(middleware.Logger(d.Log))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))
	r.Use(middleware.BodySizeLimit(maxBodySize))

	r.GET("/healthz", healthCheck(d.DB))

	if local, ok := d.Store.(*storage.LocalStore); ok {
		r.Static(strings.TrimSuffix(d.Config.MediaURL, "/"), local.Root())
	}

	api := r.Group("/api")
	protected := []gin.HandlerFunc{middleware.AuthMiddleware(d.Auth), middleware.RateLimit(d.Limiter)}

	mount := func(path string, h registrar) {
		pub := api.Group(path)
		prot := api.Group(path, protected...)
		h.RegisterRoutes(pub, prot)
	}

	// auth routes are rate limited but only /me needs a token
	auth := api.Group("/auth", middleware.RateLimit(d.Limiter))
	d.Handlers.Auth.RegisterRoutes(auth, api.Group("/auth", protected...))

	mount("/dishes", d.Handlers.Dishes)
	mount("/ingredients", d.Handlers.Ingredients)
	mount("/units", d.Handlers.Units)
	mount("/dish-ingredients", d.Handlers.DishIngredient)
	mount("/grocery-items", d.Handlers.Grocery)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, status)
	}
}
