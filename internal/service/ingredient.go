package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

// IngredientService manages the ingredient catalog.
type IngredientService struct {
	db          *gorm.DB
	invalidator RecommendationInvalidator
	logger      *zap.Logger
}

func NewIngredientService(db *gorm.DB, invalidator RecommendationInvalidator, logger *zap.Logger) *IngredientService {
	return &IngredientService{
		db:          db,
		invalidator: invalidator,
		logger:      logger.Named("ingredients"),
	}
}

// CreateIngredient adds an ingredient. Names are trimmed and must be unique
// ignoring case.
func (s *IngredientService) CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name must not be empty")
	}

	existing, err := s.findByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("ingredient " + existing.Name + " already exists")
	}

	ing := &models.Ingredient{Name: name, Category: trimmed(req.Category)}
	if err := s.db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, translate(err, "ingredient")
	}

	s.invalidator.InvalidateCatalog(ctx)
	s.logger.Info("ingredient created", zap.String("ingredient_id", ing.ID.String()), zap.String("name", ing.Name))
	return ing, nil
}

// FindOrCreateIngredient returns the ingredient with the given name, creating
// it when missing. The bool reports whether it was created.
func (s *IngredientService) FindOrCreateIngredient(ctx context.Context, name string, category *string) (*models.Ingredient, bool, error) {
	existing, err := s.findByName(ctx, s.db, strings.TrimSpace(name))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	ing, err := s.CreateIngredient(ctx, &types.CreateIngredientRequest{Name: name, Category: category})
	if err != nil {
		return nil, false, err
	}
	return ing, true, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ingredient")
	}
	return &ing, nil
}

// ListIngredients returns ingredients ordered by name.
func (s *IngredientService) ListIngredients(ctx context.Context, filter types.IngredientFilter) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(term))
	}

	ingredients := []models.Ingredient{}
	if err := q.Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, translate(err, "ingredient")
	}
	return ingredients, nil
}

// DeleteIngredient removes an ingredient together with every requirement,
// pantry item and restriction that references it.
func (s *IngredientService) DeleteIngredient(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ing models.Ingredient
		if err := tx.First(&ing, "id = ?", id).Error; err != nil {
			return err
		}
		for _, dependent := range []interface{}{&models.RecipeIngredient{}, &models.PantryItem{}, &models.Restriction{}} {
			if err := tx.Where("ingredient_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&ing).Error
	})
	if err != nil {
		return translate(err, "ingredient")
	}

	s.invalidator.InvalidateCatalog(ctx)
	s.logger.Info("ingredient deleted", zap.String("ingredient_id", id.String()))
	return nil
}

func (s *IngredientService) findByName(ctx context.Context, db *gorm.DB, name string) (*models.Ingredient, error) {
	var ings []models.Ingredient
	if err := db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).Limit(1).Find(&ings).Error; err != nil {
		return nil, translate(err, "ingredient")
	}
	if len(ings) == 0 {
		return nil, nil
	}
	return &ings[0], nil
}

// trimmed returns nil for nil or blank strings and a trimmed copy otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
