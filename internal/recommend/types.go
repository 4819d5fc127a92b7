package recommend

import (
	"github.com/google/uuid"
)

// Recipe carries the catalog fields echoed back in a Recommendation.
type Recipe struct {
	ID           uuid.UUID
	Title        string
	Description  *string
	Instructions *string
	PrepTime     *int
	CookTime     *int
	Servings     *int
	ImageURL     *string
}

// Requirement is one (recipe, ingredient) pair with the ingredient's name
// resolved. A zero IngredientID or empty IngredientName marks a requirement
// whose ingredient no longer exists.
type Requirement struct {
	RecipeID       uuid.UUID
	IngredientID   uuid.UUID
	IngredientName string
}

// Snapshot is everything Compute needs for one user. Recipes are in catalog
// order and Requirements in per-recipe insertion order.
type Snapshot struct {
	Recipes      []Recipe
	Requirements []Requirement
	Pantry       []uuid.UUID
	Restricted   []uuid.UUID
}

// Recommendation is a scored, eligible recipe for one user.
type Recommendation struct {
	RecipeID           uuid.UUID `json:"recipe_id"`
	UserID             uuid.UUID `json:"user_id"`
	Title              string    `json:"title"`
	Description        *string   `json:"description,omitempty"`
	PrepTime           *int      `json:"prep_time,omitempty"`
	CookTime           *int      `json:"cook_time,omitempty"`
	Servings           *int      `json:"servings,omitempty"`
	ImageURL           *string   `json:"image_url,omitempty"`
	Instructions       *string   `json:"instructions,omitempty"`
	VScore             float64   `json:"v_score"`
	MissingIngredients []string  `json:"missing_ingredients"`
	TotalIngredients   int       `json:"total_ingredients"`
	OwnedIngredients   int       `json:"owned_ingredients"`
}

// Cookable reports whether every required ingredient is in the pantry.
func (r Recommendation) Cookable() bool {
	return r.TotalIngredients > 0 && r.OwnedIngredients == r.TotalIngredients
}

// Result is the output of Compute.
type Result struct {
	Recommendations []Recommendation
	// Dropped counts requirements skipped because their recipe or
	// ingredient does not exist.
	Dropped int
}
