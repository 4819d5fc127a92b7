package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

// RestrictionService manages a user's allergies and dietary exclusions.
type RestrictionService struct {
	db          *gorm.DB
	invalidator RecommendationInvalidator
	logger      *zap.Logger
}

func NewRestrictionService(db *gorm.DB, invalidator RecommendationInvalidator, logger *zap.Logger) *RestrictionService {
	return &RestrictionService{
		db:          db,
		invalidator: invalidator,
		logger:      logger.Named("restrictions"),
	}
}

func (s *RestrictionService) ListRestrictions(ctx context.Context, userID uuid.UUID) ([]models.Restriction, error) {
	restrictions := []models.Restriction{}
	err := s.db.WithContext(ctx).
		Joins("Ingredient").
		Where("restrictions.user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Ingredient", Name: "name"}}).
		Find(&restrictions).Error
	if err != nil {
		return nil, translate(err, "restriction")
	}
	return restrictions, nil
}

func (s *RestrictionService) AddRestriction(ctx context.Context, userID uuid.UUID, req *types.AddRestrictionRequest) (*models.Restriction, error) {
	if !req.Type.Valid() {
		return nil, apperrors.Validation("type must be allergy or dietary")
	}

	restriction := &models.Restriction{
		UserID:       userID,
		IngredientID: req.IngredientID,
		Type:         req.Type,
		Notes:        trimmed(req.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&restriction.Ingredient, "id = ?", req.IngredientID).Error; err != nil {
			return translate(err, "ingredient")
		}
		var existing int64
		if err := tx.Model(&models.Restriction{}).
			Where("user_id = ? AND ingredient_id = ?", userID, req.IngredientID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict(restriction.Ingredient.Name + " is already restricted")
		}
		return tx.Omit(clause.Associations).Create(restriction).Error
	})
	if err != nil {
		return nil, translate(err, "restriction")
	}

	s.invalidator.InvalidateUser(ctx, userID)
	s.logger.Debug("restriction added",
		zap.String("user_id", userID.String()),
		zap.String("ingredient_id", req.IngredientID.String()),
		zap.String("type", string(req.Type)))
	return restriction, nil
}

func (s *RestrictionService) RemoveRestriction(ctx context.Context, userID, restrictionID uuid.UUID) error {
	var restriction models.Restriction
	if err := loadOwned(ctx, s.db, &restriction, "restrictions", restrictionID, userID, "restriction"); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&restriction).Error; err != nil {
		return translate(err, "restriction")
	}

	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}
