package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PantryItem records that a user owns an ingredient.
type PantryItem struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_pantry_user_ingredient" json:"user_id"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_pantry_user_ingredient" json:"ingredient_id"`
	Quantity     *float64   `json:"quantity,omitempty"`
	Unit         *string    `gorm:"size:30" json:"unit,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

func (PantryItem) TableName() string {
	return "pantry_items"
}

func (p *PantryItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
