package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *types.LoginRequest) (*models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IIngredientService defines the interface for ingredient catalog operations
type IIngredientService interface {
	CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context, filter types.IngredientFilter) ([]models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uuid.UUID) error
}

// IRecipeService defines the interface for recipe catalog operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	SearchRecipes(ctx context.Context, query string, limit int) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	AddRequirement(ctx context.Context, recipeID uuid.UUID, req *types.RequirementInput) (*models.RecipeIngredient, error)
	RemoveRequirement(ctx context.Context, recipeID, ingredientID uuid.UUID) error
}

// IImageService defines the interface for recipe image uploads
type IImageService interface {
	UploadRecipeImage(ctx context.Context, recipeID uuid.UUID, data []byte) (string, error)
}

// IPantryService defines the interface for pantry operations
type IPantryService interface {
	ListPantry(ctx context.Context, userID uuid.UUID) ([]models.PantryItem, error)
	AddPantryItem(ctx context.Context, userID uuid.UUID, req *types.AddPantryItemRequest) (*models.PantryItem, error)
	UpdatePantryItem(ctx context.Context, userID, itemID uuid.UUID, req *types.UpdatePantryItemRequest) (*models.PantryItem, error)
	RemovePantryItem(ctx context.Context, userID, itemID uuid.UUID) error
}

// IRestrictionService defines the interface for dietary restriction operations
type IRestrictionService interface {
	ListRestrictions(ctx context.Context, userID uuid.UUID) ([]models.Restriction, error)
	AddRestriction(ctx context.Context, userID uuid.UUID, req *types.AddRestrictionRequest) (*models.Restriction, error)
	RemoveRestriction(ctx context.Context, userID, restrictionID uuid.UUID) error
}

// IRecommendationService defines the interface for recommendation queries
type IRecommendationService interface {
	Recommend(ctx context.Context, userID uuid.UUID, q types.RecommendationQuery) ([]recommend.Recommendation, error)
	RecommendRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*recommend.Recommendation, error)
}

// IDashboardService defines the interface for dashboard statistics
type IDashboardService interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*types.DashboardStats, error)
}

var (
	_ IAuthService              = (*AuthService)(nil)
	_ IIngredientService        = (*IngredientService)(nil)
	_ IRecipeService            = (*RecipeService)(nil)
	_ IImageService             = (*ImageService)(nil)
	_ IPantryService            = (*PantryService)(nil)
	_ IRestrictionService       = (*RestrictionService)(nil)
	_ IRecommendationService    = (*RecommendationService)(nil)
	_ IDashboardService         = (*DashboardService)(nil)
	_ RecommendationInvalidator = (*RecommendationService)(nil)
)
