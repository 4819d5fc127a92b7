// Package integration exercises the services against a real PostgreSQL.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/metrics"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/recommend"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/testhelpers"
	"github.com/pantrychef/backend/internal/types"
)

type stack struct {
	db              *gorm.DB
	fixtures        *testhelpers.Fixtures
	recommendations *service.RecommendationService
	ingredients     *service.IngredientService
	recipes         *service.RecipeService
	pantry          *service.PantryService
	restrictions    *service.RestrictionService
}

func setupStack(t *testing.T) *stack {
	t.Helper()
	db := testhelpers.SetupPostgresDB(t)
	log := zap.NewNop()
	recs := service.NewRecommendationService(
		recommend.NewEngine(service.NewGormRecommendationProvider(db), log), nil, metrics.New(), log)
	return &stack{
		db:              db,
		fixtures:        testhelpers.NewFixtures(t, db),
		recommendations: recs,
		ingredients:     service.NewIngredientService(db, recs, log),
		recipes:         service.NewRecipeService(db, recs, log),
		pantry:          service.NewPantryService(db, recs, log),
		restrictions:    service.NewRestrictionService(db, recs, log),
	}
}

func TestRecommendationsOnPostgres(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	user := s.fixtures.User(models.RoleUser)
	omelette, ings := s.fixtures.Omelette()
	bread := s.fixtures.Ingredient("Bread")
	jam := s.fixtures.Ingredient("Jam")
	toast := s.fixtures.Recipe("Jam Toast", bread, jam)
	s.fixtures.Recipe("Plain Toast", bread)

	for _, ing := range []*models.Ingredient{ings["Eggs"], ings["Cheese"], ings["Milk"], bread} {
		_, err := s.pantry.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: ing.ID})
		require.NoError(t, err)
	}

	recs, err := s.recommendations.Recommend(ctx, user.ID, types.RecommendationQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Plain Toast", recs[0].Title)
	assert.Equal(t, 100.0, recs[0].VScore)
	assert.Equal(t, toast.ID, recs[1].RecipeID)
	assert.Equal(t, 50.0, recs[1].VScore)
	assert.Equal(t, []string{"Jam"}, recs[1].MissingIngredients)
	assert.Equal(t, omelette.ID, recs[2].RecipeID)
	assert.Equal(t, 50.0, recs[2].VScore)
	assert.Equal(t, []string{"Butter", "Salt", "Pepper"}, recs[2].MissingIngredients)

	_, err = s.restrictions.AddRestriction(ctx, user.ID, &types.AddRestrictionRequest{
		IngredientID: jam.ID,
		Type:         models.RestrictionDietary,
	})
	require.NoError(t, err)

	recs, err = s.recommendations.Recommend(ctx, user.ID, types.RecommendationQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"Plain Toast", "Omelette"}, []string{recs[0].Title, recs[1].Title})
}

func TestIngredientDeletionCascades(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	user := s.fixtures.User(models.RoleUser)
	omelette, ings := s.fixtures.Omelette()
	s.fixtures.Own(user.ID, ings["Eggs"])

	require.NoError(t, s.ingredients.DeleteIngredient(ctx, ings["Pepper"].ID))

	rec, err := s.recommendations.RecommendRecipe(ctx, user.ID, omelette.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.TotalIngredients)
	assert.Equal(t, 20.0, rec.VScore)
}

func TestFractionalQuantitiesArePreserved(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	user := s.fixtures.User(models.RoleUser)
	saffron := s.fixtures.Ingredient("Saffron")
	paella := s.fixtures.Recipe("Paella")

	_, err := s.recipes.AddRequirement(ctx, paella.ID, &types.RequirementInput{IngredientID: saffron.ID, Quantity: 0.001})
	require.NoError(t, err)
	qty := 0.125
	_, err = s.pantry.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: saffron.ID, Quantity: &qty})
	require.NoError(t, err)

	var requirement models.RecipeIngredient
	require.NoError(t, s.db.First(&requirement, "recipe_id = ?", paella.ID).Error)
	assert.Equal(t, 0.001, requirement.Quantity)

	var item models.PantryItem
	require.NoError(t, s.db.First(&item, "user_id = ?", user.ID).Error)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 0.125, *item.Quantity)
}

func TestMigrationsRollBackAndReapply(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := database.NewMigrator(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Down(1))
	assert.False(t, db.Migrator().HasTable("recipes"))

	require.NoError(t, m.Up())
	assert.True(t, db.Migrator().HasTable("recipes"))
}
