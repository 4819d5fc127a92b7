package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Recipe is a catalog recipe. PrepTime and CookTime are in minutes.
type Recipe struct {
	ID           uuid.UUID          `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Title        string             `gorm:"size:255;not null" json:"title"`
	Description  *string            `gorm:"type:text" json:"description,omitempty"`
	Instructions *string            `gorm:"type:text" json:"instructions,omitempty"`
	PrepTime     *int               `json:"prep_time,omitempty"`
	CookTime     *int               `json:"cook_time,omitempty"`
	Servings     *int               `json:"servings,omitempty"`
	ImageURL     *string            `gorm:"size:512" json:"image_url,omitempty"`
	Embedding    *pgvector.Vector   `gorm:"type:vector(3);<-;->:false" json:"-"`
	Requirements []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the search embedding in step with the searchable text.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	text := r.Title
	if r.Description != nil {
		text += " " + *r.Description
	}
	embedding := EmbeddingFor(text)
	r.Embedding = &embedding
	return nil
}

// EmbeddingFor returns a small deterministic embedding of text: its length,
// vowel count and consonant count. It carries no meaning, so ranking by it
// orders matches by text shape (mostly length), not by semantic similarity.
func EmbeddingFor(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(len(text)), vowels, consonants})
}

// RecipeIngredient is one requirement of a recipe. Position preserves the
// order in which requirements were added.
type RecipeIngredient struct {
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"recipe_id"`
	IngredientID uuid.UUID  `gorm:"type:varchar(36);primaryKey" json:"ingredient_id"`
	Position     int        `gorm:"not null;default:0" json:"position"`
	Quantity     float64    `gorm:"not null;check:chk_recipe_ingredients_quantity,quantity > 0" json:"quantity"`
	Unit         *string    `gorm:"size:30" json:"unit,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
