package types

import (
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RecommendationsResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}

// MissingCount is how many recommended recipes lack an ingredient.
type MissingCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DashboardStats struct {
	PantryItems        int64          `json:"pantry_items"`
	Restrictions       int64          `json:"restrictions"`
	RecommendedRecipes int            `json:"recommended_recipes"`
	CookableRecipes    int            `json:"cookable_recipes"`
	AverageVScore      float64        `json:"average_v_score"`
	TopMissing         []MissingCount `json:"top_missing"`
}
