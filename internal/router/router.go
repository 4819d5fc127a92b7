// Package router assembles the gin engine: global middleware, route groups
// and their guards.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/api"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/middleware"
)

// Options configures the engine's middleware.
type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Collector
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	TokenValidator middleware.TokenValidator
	Enforcer       middleware.PolicyEnforcer
	// PantryWriteLimiter is optional; nil disables per-user write limits.
	PantryWriteLimiter *middleware.RateLimiter
}

// Handlers are the API handlers mounted by SetupRouter.
type Handlers struct {
	Health          *api.HealthHandler
	Auth            *api.AuthHandler
	Ingredients     *api.IngredientHandler
	Recipes         *api.RecipeHandler
	Pantry          *api.PantryHandler
	Restrictions    *api.RestrictionHandler
	Recommendations *api.RecommendationHandler
	Dashboard       *api.DashboardHandler
}

// SetupRouter configures the application routes
func SetupRouter(opts Options, h Handlers) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(globalMiddleware(opts)...)

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(
		middleware.AuthMiddleware(opts.TokenValidator),
		middleware.Authorize(opts.Enforcer),
	)
	{
		catalog := protected.Group("/catalog")
		h.Ingredients.RegisterRoutes(catalog)
		h.Recipes.RegisterRoutes(catalog)

		var pantryLimits []gin.HandlerFunc
		if opts.PantryWriteLimiter != nil {
			pantryLimits = append(pantryLimits, opts.PantryWriteLimiter.Middleware())
		}
		h.Pantry.RegisterRoutes(protected, pantryLimits...)
		h.Restrictions.RegisterRoutes(protected)
		h.Recommendations.RegisterRoutes(protected)
		h.Dashboard.RegisterRoutes(protected)
	}

	return router, nil
}

// globalMiddleware runs outermost first. Recovery sits inside Metrics and
// Logger so panicked requests are still counted and logged.
func globalMiddleware(opts Options) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Metrics(opts.Metrics),
		middleware.Logger(opts.Logger),
		middleware.Recovery(opts.Logger),
		middleware.ErrorHandler(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	}
	if opts.RateLimitRPS > 0 {
		chain = append(chain, middleware.GlobalRateLimit(opts.RateLimitRPS, opts.RateLimitBurst, opts.Metrics))
	}
	return chain
}
