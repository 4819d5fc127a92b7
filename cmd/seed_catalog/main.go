package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

//go:embed catalog.json
var catalogJSON []byte

type catalogIngredient struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type catalogRequirement struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type catalogRecipe struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Instructions string               `json:"instructions"`
	PrepTime     *int                 `json:"prep_time"`
	CookTime     *int                 `json:"cook_time"`
	Servings     *int                 `json:"servings"`
	Ingredients  []catalogRequirement `json:"ingredients"`
}

type catalog struct {
	Ingredients []catalogIngredient `json:"ingredients"`
	Recipes     []catalogRecipe     `json:"recipes"`
}

type seedResult struct {
	IngredientsCreated int
	RecipesCreated     int
	RecipesSkipped     int
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.Environment.Verbose()})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.New(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	// cached recommendations must see the new catalog
	var cache service.RecommendationCache = service.NopRecommendationCache{}
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, zl)
		if err != nil {
			zl.Warn("redis unavailable, cached recommendations expire by TTL", zap.Error(err))
		} else {
			defer client.Close()
			cache = service.NewRedisRecommendationCache(client, cfg.RecommendationCacheTTL, metrics.New(), zl)
		}
	}

	res, err := seedCatalog(context.Background(), db, cache, zl)
	if err != nil {
		zl.Fatal("failed to seed catalog", zap.Error(err))
	}
	zl.Info("catalog seeded",
		zap.Int("ingredients_created", res.IngredientsCreated),
		zap.Int("recipes_created", res.RecipesCreated),
		zap.Int("recipes_skipped", res.RecipesSkipped))
}

// seedCatalog loads the embedded catalog. Ingredients are matched by name and
// recipes by title, so running it twice creates nothing new.
func seedCatalog(ctx context.Context, db *gorm.DB, cache service.RecommendationCache, zl *zap.Logger) (*seedResult, error) {
	var c catalog
	if err := json.Unmarshal(catalogJSON, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	recommendations := service.NewRecommendationService(
		recommend.NewEngine(service.NewGormRecommendationProvider(db), zl), cache, metrics.New(), zl)
	ingredients := service.NewIngredientService(db, recommendations, zl)
	recipes := service.NewRecipeService(db, recommendations, zl)

	res := &seedResult{}
	byName := make(map[string]*models.Ingredient, len(c.Ingredients))
	for _, ci := range c.Ingredients {
		category := ci.Category
		ing, created, err := ingredients.FindOrCreateIngredient(ctx, ci.Name, &category)
		if err != nil {
			return nil, fmt.Errorf("ingredient %q: %w", ci.Name, err)
		}
		if created {
			res.IngredientsCreated++
		}
		byName[ci.Name] = ing
	}

	for _, cr := range c.Recipes {
		err := db.WithContext(ctx).Where("title = ?", cr.Title).First(&models.Recipe{}).Error
		if err == nil {
			res.RecipesSkipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %q: %w", cr.Title, err)
		}

		req := &types.CreateRecipeRequest{
			Title:        cr.Title,
			Description:  &cr.Description,
			Instructions: &cr.Instructions,
			PrepTime:     cr.PrepTime,
			CookTime:     cr.CookTime,
			Servings:     cr.Servings,
		}
		for _, r := range cr.Ingredients {
			ing, ok := byName[r.Name]
			if !ok {
				return nil, fmt.Errorf("recipe %q needs unknown ingredient %q", cr.Title, r.Name)
			}
			unit := r.Unit
			req.Ingredients = append(req.Ingredients, types.RequirementInput{
				IngredientID: ing.ID,
				Quantity:     r.Quantity,
				Unit:         &unit,
			})
		}
		if _, err := recipes.CreateRecipe(ctx, req); err != nil {
			return nil, fmt.Errorf("recipe %q: %w", cr.Title, err)
		}
		res.RecipesCreated++
	}
	return res, nil
}
