package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/types"
)

// RecommendationInvalidator is notified of every mutation that can change a
// recommendation list.
type RecommendationInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID)
	InvalidateCatalog(ctx context.Context)
}

// GormRecommendationProvider reads recommendation inputs through gorm.
type GormRecommendationProvider struct {
	db *gorm.DB
}

func NewGormRecommendationProvider(db *gorm.DB) *GormRecommendationProvider {
	return &GormRecommendationProvider{db: db}
}

func (p *GormRecommendationProvider) ListRecipes(ctx context.Context) ([]recommend.Recipe, error) {
	var rows []models.Recipe
	if err := p.db.WithContext(ctx).Order("title ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	recipes := make([]recommend.Recipe, len(rows))
	for i, r := range rows {
		recipes[i] = recommend.Recipe{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			Instructions: r.Instructions,
			PrepTime:     r.PrepTime,
			CookTime:     r.CookTime,
			Servings:     r.Servings,
			ImageURL:     r.ImageURL,
		}
	}
	return recipes, nil
}

// ListRequirements left-joins ingredients so requirements whose ingredient
// vanished still reach the engine, which counts and drops them.
func (p *GormRecommendationProvider) ListRequirements(ctx context.Context) ([]recommend.Requirement, error) {
	var rows []struct {
		RecipeID       uuid.UUID
		IngredientID   *uuid.UUID
		IngredientName *string
	}
	err := p.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("ri.recipe_id AS recipe_id, i.id AS ingredient_id, i.name AS ingredient_name").
		Joins("LEFT JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Order("ri.recipe_id ASC, ri.position ASC, ri.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	reqs := make([]recommend.Requirement, len(rows))
	for i, r := range rows {
		reqs[i].RecipeID = r.RecipeID
		if r.IngredientID != nil {
			reqs[i].IngredientID = *r.IngredientID
		}
		if r.IngredientName != nil {
			reqs[i].IngredientName = *r.IngredientName
		}
	}
	return reqs, nil
}

func (p *GormRecommendationProvider) ListPantryIngredientIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Model(&models.PantryItem{}).
		Where("user_id = ?", userID).
		Pluck("ingredient_id", &ids).Error
	return ids, err
}

func (p *GormRecommendationProvider) ListRestrictedIngredientIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Model(&models.Restriction{}).
		Where("user_id = ?", userID).
		Pluck("ingredient_id", &ids).Error
	return ids, err
}

// RecommendationService serves per-user recommendation lists through a cache.
// It is the RecommendationInvalidator for the mutating services.
type RecommendationService struct {
	engine  *recommend.Engine
	cache   RecommendationCache
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewRecommendationService(engine *recommend.Engine, cache RecommendationCache, m *metrics.Collector, logger *zap.Logger) *RecommendationService {
	if cache == nil {
		cache = NopRecommendationCache{}
	}
	return &RecommendationService{
		engine:  engine,
		cache:   cache,
		metrics: m,
		logger:  logger.Named("recommendations"),
	}
}

// Recommend returns the user's ranked list with q's filters applied.
func (s *RecommendationService) Recommend(ctx context.Context, userID uuid.UUID, q types.RecommendationQuery) ([]recommend.Recommendation, error) {
	recs, err := s.ranked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterRecommendations(recs, q), nil
}

// RecommendRecipe returns the user's recommendation for one recipe. A recipe
// that is unknown or not eligible for the user is NotFound.
func (s *RecommendationService) RecommendRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*recommend.Recommendation, error) {
	recs, err := s.ranked(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].RecipeID == recipeID {
			return &recs[i], nil
		}
	}
	return nil, apperrors.NotFound("recommendation")
}

func (s *RecommendationService) ranked(ctx context.Context, userID uuid.UUID) ([]recommend.Recommendation, error) {
	cached, key, hit := s.cache.Lookup(ctx, userID)
	if hit {
		s.metrics.ObserveRecommendation(metrics.SourceCache, len(cached), 0)
		return cached, nil
	}

	start := time.Now()
	recs, err := s.engine.Recommend(ctx, userID)
	if err != nil {
		s.logger.Error("failed to compute recommendations", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveRecommendation(metrics.SourceComputed, len(recs), time.Since(start))

	s.cache.Store(ctx, key, recs)
	return recs, nil
}

func (s *RecommendationService) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Error("failed to invalidate user recommendations", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *RecommendationService) InvalidateCatalog(ctx context.Context) {
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.logger.Error("failed to invalidate catalog recommendations", zap.Error(err))
	}
}

// filterRecommendations applies q without reordering.
func filterRecommendations(recs []recommend.Recommendation, q types.RecommendationQuery) []recommend.Recommendation {
	out := make([]recommend.Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.VScore < q.MinScore {
			continue
		}
		if q.CookableOnly && !r.Cookable() {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
