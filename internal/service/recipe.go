package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

// defaultSearchLimit caps search results when the caller gives no limit.
const defaultSearchLimit = 50

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching term
// literally. Queries using it must declare ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// RecipeService handles the recipe catalog and its requirements.
type RecipeService struct {
	db          *gorm.DB
	invalidator RecommendationInvalidator
	logger      *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, invalidator RecommendationInvalidator, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		invalidator: invalidator,
		logger:      logger.Named("recipes"),
	}
}

// CreateRecipe creates a recipe and its requirements in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title must not be empty")
	}

	recipe := &models.Recipe{
		Title:        title,
		Description:  req.Description,
		Instructions: req.Instructions,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		ImageURL:     req.ImageURL,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		for i := range req.Ingredients {
			if _, err := addRequirement(tx, recipe.ID, &req.Ingredients[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "recipe")
	}

	s.invalidator.InvalidateCatalog(ctx)
	s.logger.Info("recipe created",
		zap.String("recipe_id", recipe.ID.String()),
		zap.Int("requirements", len(req.Ingredients)))
	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe with its requirements in insertion order.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Requirements", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Requirements.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "recipe")
	}
	return &recipe, nil
}

// ListRecipes returns the catalog in catalog order.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if err := s.db.WithContext(ctx).Order("title ASC, id ASC").Find(&recipes).Error; err != nil {
		return nil, translate(err, "recipe")
	}
	return recipes, nil
}

// SearchRecipes matches title and description. On PostgreSQL matches are
// ranked by embedding distance to the query, which is a length and letter
// count heuristic (see models.EmbeddingFor).
func (s *RecipeService) SearchRecipes(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListRecipes(ctx)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	like := containsPattern(query)
	q := s.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\'`, like, like).
		Limit(limit)

	if s.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?, title ASC", Vars: []interface{}{models.EmbeddingFor(query)}},
		})
	} else {
		q = q.Order("title ASC, id ASC")
	}

	recipes := []models.Recipe{}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, translate(err, "recipe")
	}
	return recipes, nil
}

// UpdateRecipe applies the non-nil fields of req.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recipe")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		recipe.Title = title
	}
	if req.Description != nil {
		recipe.Description = req.Description
	}
	if req.Instructions != nil {
		recipe.Instructions = req.Instructions
	}
	if req.PrepTime != nil {
		recipe.PrepTime = req.PrepTime
	}
	if req.CookTime != nil {
		recipe.CookTime = req.CookTime
	}
	if req.Servings != nil {
		recipe.Servings = req.Servings
	}
	if req.ImageURL != nil {
		recipe.ImageURL = req.ImageURL
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&recipe).Error; err != nil {
		return nil, translate(err, "recipe")
	}

	s.invalidator.InvalidateCatalog(ctx)
	return s.GetRecipe(ctx, id)
}

// SetImageURL records the uploaded image of a recipe.
func (s *RecipeService) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Recipe{}).
		Where("id = ?", id).
		Update("image_url", url)
	if res.Error != nil {
		return translate(res.Error, "recipe")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe")
	}
	s.invalidator.InvalidateCatalog(ctx)
	return nil
}

// DeleteRecipe removes a recipe and its requirements.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return translate(err, "recipe")
	}

	s.invalidator.InvalidateCatalog(ctx)
	s.logger.Info("recipe deleted", zap.String("recipe_id", id.String()))
	return nil
}

// AddRequirement appends an ingredient to a recipe's requirement set.
func (s *RecipeService) AddRequirement(ctx context.Context, recipeID uuid.UUID, req *types.RequirementInput) (*models.RecipeIngredient, error) {
	var requirement *models.RecipeIngredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			return translate(err, "recipe")
		}
		var err error
		requirement, err = addRequirement(tx, recipeID, req)
		return err
	})
	if err != nil {
		return nil, translate(err, "requirement")
	}

	s.invalidator.InvalidateCatalog(ctx)
	return requirement, nil
}

// RemoveRequirement deletes one ingredient from a recipe's requirement set.
func (s *RecipeService) RemoveRequirement(ctx context.Context, recipeID, ingredientID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("recipe_id = ? AND ingredient_id = ?", recipeID, ingredientID).
		Delete(&models.RecipeIngredient{})
	if res.Error != nil {
		return translate(res.Error, "requirement")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("requirement")
	}
	s.invalidator.InvalidateCatalog(ctx)
	return nil
}

// addRequirement inserts one requirement at the end of the recipe's list.
// It must run inside a transaction.
func addRequirement(tx *gorm.DB, recipeID uuid.UUID, in *types.RequirementInput) (*models.RecipeIngredient, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be greater than zero")
	}

	var ing models.Ingredient
	if err := tx.First(&ing, "id = ?", in.IngredientID).Error; err != nil {
		return nil, translate(err, "ingredient")
	}

	var existing int64
	if err := tx.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ? AND ingredient_id = ?", recipeID, in.IngredientID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.Conflict("recipe already requires " + ing.Name)
	}

	var last struct{ Position int }
	if err := tx.Model(&models.RecipeIngredient{}).
		Select("COALESCE(MAX(position), 0) AS position").
		Where("recipe_id = ?", recipeID).
		Scan(&last).Error; err != nil {
		return nil, err
	}

	requirement := &models.RecipeIngredient{
		RecipeID:     recipeID,
		IngredientID: in.IngredientID,
		Position:     last.Position + 1,
		Quantity:     in.Quantity,
		Unit:         trimmed(in.Unit),
	}
	if err := tx.Omit(clause.Associations).Create(requirement).Error; err != nil {
		return nil, err
	}
	requirement.Ingredient = ing
	return requirement, nil
}
