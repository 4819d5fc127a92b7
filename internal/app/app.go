// Package app wires the API server together with fx.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/api"
	"github.com/pantrychef/backend/internal/authz"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/middleware"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/router"
	"github.com/pantrychef/backend/internal/server"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/telemetry"
)

// Module provides the whole application, loading configuration from the
// environment.
var Module = fx.Options(
	fx.Provide(config.LoadConfig),
	CoreModule,
)

// WithConfig provides the application around an already loaded Config.
func WithConfig(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		CoreModule,
	)
}

// CoreModule provides everything except the configuration.
var CoreModule = fx.Options(
	InfrastructureModule,
	ServiceModule,
	HTTPModule,
	fx.Invoke(registerLifecycle),
)

// InfrastructureModule provides logging, storage, cache and telemetry.
var InfrastructureModule = fx.Provide(
	newLogger,
	newDatabase,
	newRedis,
	metrics.New,
	newTracing,
	newRecommendationCache,
)

// ServiceModule provides the recommendation engine and the domain services.
var ServiceModule = fx.Provide(
	fx.Annotate(
		service.NewGormRecommendationProvider,
		fx.As(new(recommend.DataProvider)),
	),
	recommend.NewEngine,
	service.NewRecommendationService,
	func(s *service.RecommendationService) service.RecommendationInvalidator { return s },
	func(cfg *config.Config, db *gorm.DB, log *zap.Logger) *service.AuthService {
		return service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiration, log)
	},
	service.NewIngredientService,
	service.NewRecipeService,
	service.NewPantryService,
	service.NewRestrictionService,
	service.NewDashboardService,
	newImageService,
)

// HTTPModule provides the handlers, the gin engine and the server.
var HTTPModule = fx.Provide(
	authz.NewEnforcer,
	newPantryWriteLimiter,
	func(db *gorm.DB, r *Redis) *api.HealthHandler { return api.NewHealthHandler(db, r.Cmdable()) },
	func(s *service.AuthService) *api.AuthHandler { return api.NewAuthHandler(s) },
	func(s *service.IngredientService) *api.IngredientHandler { return api.NewIngredientHandler(s) },
	func(s *service.RecipeService, images service.IImageService) *api.RecipeHandler {
		return api.NewRecipeHandler(s, images)
	},
	func(s *service.PantryService) *api.PantryHandler { return api.NewPantryHandler(s) },
	func(s *service.RestrictionService) *api.RestrictionHandler { return api.NewRestrictionHandler(s) },
	func(s *service.RecommendationService) *api.RecommendationHandler { return api.NewRecommendationHandler(s) },
	func(s *service.DashboardService) *api.DashboardHandler { return api.NewDashboardHandler(s) },
	newRouter,
	func(cfg *config.Config, engine *gin.Engine, log *zap.Logger) *server.Server {
		return server.NewServer(cfg.Address(), engine, log)
	},
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment.Verbose(),
	})
}

func newDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.RunMigrations(db, log); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Redis holds the optional Redis client. Client is nil when Redis is not
// configured or unreachable at startup.
type Redis struct {
	Client *redis.Client
}

// Cmdable returns the client as a redis.Cmdable, or a nil interface.
func (r *Redis) Cmdable() redis.Cmdable {
	if r.Client == nil {
		return nil
	}
	return r.Client
}

func newRedis(cfg *config.Config, log *zap.Logger) *Redis {
	if !cfg.RedisEnabled() {
		log.Info("redis not configured, recommendation caching and pantry write limits disabled")
		return &Redis{}
	}
	client, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("redis unavailable, continuing without it", zap.Error(err))
		return &Redis{}
	}
	return &Redis{Client: client}
}

func newTracing(cfg *config.Config, log *zap.Logger) (*telemetry.TracingProvider, error) {
	return telemetry.NewTracingProvider(context.Background(), telemetry.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		Environment: string(cfg.Environment),
	}, log)
}

// newRecommendationCache disables caching without Redis or when the TTL is
// zero, since entries without an expiry would never be reclaimed.
func newRecommendationCache(cfg *config.Config, r *Redis, m *metrics.Collector, log *zap.Logger) service.RecommendationCache {
	if r.Client == nil || cfg.RecommendationCacheTTL <= 0 {
		return service.NopRecommendationCache{}
	}
	return service.NewRedisRecommendationCache(r.Client, cfg.RecommendationCacheTTL, m, log)
}

func newImageService(cfg *config.Config, recipes *service.RecipeService, log *zap.Logger) (service.IImageService, error) {
	if !cfg.ImageUploadsEnabled() {
		log.Info("S3 bucket not configured, recipe image uploads disabled")
		return nil, nil
	}
	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return service.NewImageService(s3Config, recipes, log), nil
}

func newPantryWriteLimiter(cfg *config.Config, r *Redis, m *metrics.Collector, log *zap.Logger) *middleware.RateLimiter {
	if r.Client == nil || cfg.PantryWriteLimit <= 0 {
		return nil
	}
	return middleware.NewPantryWriteLimiter(r.Client, cfg.PantryWriteLimit, cfg.PantryWriteWindow, m, log)
}

type routerParams struct {
	fx.In

	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *metrics.Collector
	Auth          *service.AuthService
	Enforcer      *authz.Enforcer
	PantryLimiter *middleware.RateLimiter

	Health          *api.HealthHandler
	AuthHandler     *api.AuthHandler
	Ingredients     *api.IngredientHandler
	Recipes         *api.RecipeHandler
	Pantry          *api.PantryHandler
	Restrictions    *api.RestrictionHandler
	Recommendations *api.RecommendationHandler
	Dashboard       *api.DashboardHandler
}

func newRouter(p routerParams) (*gin.Engine, error) {
	if p.Config.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return router.SetupRouter(router.Options{
		Logger:             p.Logger,
		Metrics:            p.Metrics,
		AllowedOrigins:     p.Config.AllowedOrigins,
		RateLimitRPS:       p.Config.RateLimitRPS,
		RateLimitBurst:     p.Config.RateLimitBurst,
		TokenValidator:     p.Auth,
		Enforcer:           p.Enforcer,
		PantryWriteLimiter: p.PantryLimiter,
	}, router.Handlers{
		Health:          p.Health,
		Auth:            p.AuthHandler,
		Ingredients:     p.Ingredients,
		Recipes:         p.Recipes,
		Pantry:          p.Pantry,
		Restrictions:    p.Restrictions,
		Recommendations: p.Recommendations,
		Dashboard:       p.Dashboard,
	})
}

func registerLifecycle(lc fx.Lifecycle, srv *server.Server, db *gorm.DB, r *Redis, tp *telemetry.TracingProvider, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				log.Error("server shutdown failed", zap.Error(err))
			}
			if err := tp.Shutdown(ctx); err != nil {
				log.Error("tracing shutdown failed", zap.Error(err))
			}
			if r.Client != nil {
				if err := r.Client.Close(); err != nil {
					log.Error("failed to close redis", zap.Error(err))
				}
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}
