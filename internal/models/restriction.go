package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestrictionType string

const (
	RestrictionAllergy RestrictionType = "allergy"
	RestrictionDietary RestrictionType = "dietary"
)

func (t RestrictionType) Valid() bool {
	return t == RestrictionAllergy || t == RestrictionDietary
}

// Restriction marks an ingredient the user must avoid. Both types exclude
// recipes from recommendations.
type Restriction struct {
	ID           uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_restriction_user_ingredient" json:"user_id"`
	IngredientID uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_restriction_user_ingredient" json:"ingredient_id"`
	Type         RestrictionType `gorm:"size:20;not null" json:"type"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Ingredient   Ingredient      `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

func (Restriction) TableName() string {
	return "restrictions"
}

func (r *Restriction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
