package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

// PantryService manages the ingredients a user owns. Every method is scoped
// to the given user; rows of other users are never returned or modified.
type PantryService struct {
	db          *gorm.DB
	invalidator RecommendationInvalidator
	logger      *zap.Logger
}

func NewPantryService(db *gorm.DB, invalidator RecommendationInvalidator, logger *zap.Logger) *PantryService {
	return &PantryService{
		db:          db,
		invalidator: invalidator,
		logger:      logger.Named("pantry"),
	}
}

// ListPantry returns the user's pantry ordered by ingredient name.
func (s *PantryService) ListPantry(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error) {
	items := []models.PantryItem{}
	err := s.db.WithContext(ctx).
		Joins("Ingredient").
		Where("pantry_items.user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Ingredient", Name: "name"}}).
		Find(&items).Error
	if err != nil {
		return nil, translate(err, "pantry item")
	}
	return items, nil
}

// AddPantryItem records that the user owns an ingredient.
func (s *PantryService) AddPantryItem(ctx context.Context, userID uuid.UUID, req *types.AddPantryItemRequest) (*models.PantryItem, error) {
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, apperrors.Validation("quantity must not be negative")
	}

	item := &models.PantryItem{
		UserID:       userID,
		IngredientID: req.IngredientID,
		Quantity:     req.Quantity,
		Unit:         trimmed(req.Unit),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item.Ingredient, "id = ?", req.IngredientID).Error; err != nil {
			return translate(err, "ingredient")
		}
		var existing int64
		if err := tx.Model(&models.PantryItem{}).
			Where("user_id = ? AND ingredient_id = ?", userID, req.IngredientID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict(item.Ingredient.Name + " is already in the pantry")
		}
		return tx.Omit(clause.Associations).Create(item).Error
	})
	if err != nil {
		return nil, translate(err, "pantry item")
	}

	s.invalidator.InvalidateUser(ctx, userID)
	s.logger.Debug("pantry item added",
		zap.String("user_id", userID.String()),
		zap.String("ingredient_id", req.IngredientID.String()))
	return item, nil
}

// UpdatePantryItem changes the quantity or unit of an owned item.
func (s *PantryService) UpdatePantryItem(ctx context.Context, userID, itemID uuid.UUID, req *types.UpdatePantryItemRequest) (*models.PantryItem, error) {
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, apperrors.Validation("quantity must not be negative")
	}

	var item models.PantryItem
	if err := loadOwned(ctx, s.db.Joins("Ingredient"), &item, "pantry_items", itemID, userID, "pantry item"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
		item.Quantity = req.Quantity
	}
	if req.Unit != nil {
		item.Unit = trimmed(req.Unit)
		updates["unit"] = item.Unit
	}
	if len(updates) == 0 {
		return &item, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.PantryItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
		return nil, translate(err, "pantry item")
	}

	s.invalidator.InvalidateUser(ctx, userID)
	return &item, nil
}

// RemovePantryItem deletes an owned pantry item.
func (s *PantryService) RemovePantryItem(ctx context.Context, userID, itemID uuid.UUID) error {
	var item models.PantryItem
	if err := loadOwned(ctx, s.db, &item, "pantry_items", itemID, userID, "pantry item"); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&item).Error; err != nil {
		return translate(err, "pantry item")
	}

	s.invalidator.InvalidateUser(ctx, userID)
	return nil
}

// loadOwned loads the row with the given id from table into dest and checks
// that it belongs to userID.
func loadOwned(ctx context.Context, db *gorm.DB, dest interface{}, table string, id, userID uuid.UUID, resource string) error {
	if err := db.WithContext(ctx).First(dest, table+".id = ?", id).Error; err != nil {
		return translate(err, resource)
	}

	var owner uuid.UUID
	switch row := dest.(type) {
	case *models.PantryItem:
		owner = row.UserID
	case *models.Restriction:
		owner = row.UserID
	default:
		return apperrors.Internal(fmt.Errorf("unsupported owned row %T", dest))
	}
	if owner != userID {
		return apperrors.Forbidden("you do not own this " + resource)
	}
	return nil
}
