package types

import (
	"github.com/google/uuid"

	"github.com/pantrychef/backend/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateIngredientRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Category *string `json:"category" binding:"omitempty,max=50"`
}

// IngredientFilter narrows ingredient listings; empty fields match all.
type IngredientFilter struct {
	Category string `form:"category"`
	Query    string `form:"q"`
}

// RequirementInput is one ingredient a recipe needs.
type RequirementInput struct {
	IngredientID uuid.UUID `json:"ingredient_id" binding:"required"`
	Quantity     float64   `json:"quantity" binding:"required,gt=0"`
	Unit         *string   `json:"unit" binding:"omitempty,max=30"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Ingredients are stored in the given order.
type CreateRecipeRequest struct {
	Title        string             `json:"title" binding:"required,max=255"`
	Description  *string            `json:"description"`
	Instructions *string            `json:"instructions"`
	PrepTime     *int               `json:"prep_time" binding:"omitempty,min=0"`
	CookTime     *int               `json:"cook_time" binding:"omitempty,min=0"`
	Servings     *int               `json:"servings" binding:"omitempty,min=1"`
	ImageURL     *string            `json:"image_url" binding:"omitempty,url"`
	Ingredients  []RequirementInput `json:"ingredients" binding:"dive"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string `json:"description"`
	Instructions *string `json:"instructions"`
	PrepTime     *int    `json:"prep_time" binding:"omitempty,min=0"`
	CookTime     *int    `json:"cook_time" binding:"omitempty,min=0"`
	Servings     *int    `json:"servings" binding:"omitempty,min=1"`
	ImageURL     *string `json:"image_url" binding:"omitempty,url"`
}

type AddPantryItemRequest struct {
	IngredientID uuid.UUID `json:"ingredient_id" binding:"required"`
	Quantity     *float64  `json:"quantity" binding:"omitempty,gte=0"`
	Unit         *string   `json:"unit" binding:"omitempty,max=30"`
}

type UpdatePantryItemRequest struct {
	Quantity *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit     *string  `json:"unit" binding:"omitempty,max=30"`
}

type AddRestrictionRequest struct {
	IngredientID uuid.UUID              `json:"ingredient_id" binding:"required"`
	Type         models.RestrictionType `json:"type" binding:"required,restriction_type"`
	Notes        *string                `json:"notes" binding:"omitempty,max=500"`
}

// RecommendationQuery filters a user's ranked recommendations without
// changing their order. Zero values disable a filter.
type RecommendationQuery struct {
	MinScore     float64 `form:"min_score" binding:"gte=0,lte=100"`
	Limit        int     `form:"limit" binding:"gte=0,lte=500"`
	CookableOnly bool    `form:"cookable"`
}
