package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

const testPassword = "testpassword123"

type testUser struct {
	name         string
	email        string
	role         string
	pantry       []string
	restrictions map[string]models.RestrictionType
}

var testUsers = []testUser{
	{
		name:  "Admin User",
		email: "admin@example.com",
		role:  models.RoleAdmin,
	},
	{
		name:   "John Doe",
		email:  "john.doe@example.com",
		role:   models.RoleUser,
		pantry: []string{"Eggs", "Butter", "Cheddar", "Salt", "Pepper", "Milk", "Flour"},
	},
	{
		name:         "Jane Smith",
		email:        "jane.smith@example.com",
		role:         models.RoleUser,
		pantry:       []string{"Spaghetti", "Garlic", "Olive Oil", "Salt", "Tomato"},
		restrictions: map[string]models.RestrictionType{"Shrimp": models.RestrictionAllergy},
	},
	{
		name:         "Bob Wilson",
		email:        "bob.wilson@example.com",
		role:         models.RoleUser,
		pantry:       []string{"Bread", "Jam", "Banana"},
		restrictions: map[string]models.RestrictionType{"Peanut Butter": models.RestrictionAllergy, "Chicken Breast": models.RestrictionDietary},
	},
	{
		name:  "Empty Pantry",
		email: "empty@example.com",
		role:  models.RoleUser,
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.Environment.Verbose()})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.New(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	created, err := seedUsers(context.Background(), db, cfg, zl)
	if err != nil {
		zl.Fatal("failed to seed test users", zap.Error(err))
	}
	zl.Info("test users seeded", zap.Int("created", created), zap.String("password", testPassword))
}

// seedUsers creates the test users, skipping existing emails. Pantry and
// restriction entries naming ingredients absent from the catalog are skipped.
func seedUsers(ctx context.Context, db *gorm.DB, cfg *config.Config, zl *zap.Logger) (int, error) {
	recommendations := service.NewRecommendationService(
		recommend.NewEngine(service.NewGormRecommendationProvider(db), zl), nil, metrics.New(), zl)
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiration, zl)
	pantry := service.NewPantryService(db, recommendations, zl)
	restrictions := service.NewRestrictionService(db, recommendations, zl)

	created := 0
	for _, tu := range testUsers {
		user, err := auth.Register(ctx, &types.RegisterRequest{
			Email:    tu.email,
			Password: testPassword,
			Name:     tu.name,
		})
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			zl.Info("user already exists, skipping", zap.String("email", tu.email))
			continue
		}
		if err != nil {
			return created, fmt.Errorf("user %s: %w", tu.email, err)
		}
		if tu.role != models.RoleUser {
			if err := db.WithContext(ctx).Model(user).Update("role", tu.role).Error; err != nil {
				return created, fmt.Errorf("user %s: %w", tu.email, err)
			}
		}
		created++

		for _, name := range tu.pantry {
			ing, ok, err := lookupIngredient(ctx, db, name)
			if err != nil {
				return created, err
			}
			if !ok {
				zl.Warn("pantry ingredient not in catalog", zap.String("ingredient", name))
				continue
			}
			if _, err := pantry.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: ing.ID}); err != nil {
				return created, fmt.Errorf("user %s pantry %s: %w", tu.email, name, err)
			}
		}
		for name, typ := range tu.restrictions {
			ing, ok, err := lookupIngredient(ctx, db, name)
			if err != nil {
				return created, err
			}
			if !ok {
				zl.Warn("restricted ingredient not in catalog", zap.String("ingredient", name))
				continue
			}
			if _, err := restrictions.AddRestriction(ctx, user.ID, &types.AddRestrictionRequest{IngredientID: ing.ID, Type: typ}); err != nil {
				return created, fmt.Errorf("user %s restriction %s: %w", tu.email, name, err)
			}
		}
	}
	return created, nil
}

func lookupIngredient(ctx context.Context, db *gorm.DB, name string) (*models.Ingredient, bool, error) {
	var ings []models.Ingredient
	if err := db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&ings).Error; err != nil {
		return nil, false, fmt.Errorf("ingredient %s: %w", name, err)
	}
	if len(ings) == 0 {
		return nil, false, nil
	}
	return &ings[0], true, nil
}
