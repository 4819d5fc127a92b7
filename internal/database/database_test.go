package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/testhelpers"
)

func TestNewSqlite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "pantry.db")}

	db, err := database.New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.HealthCheck(context.Background(), db))
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))

	for _, m := range database.Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(&config.Config{DBDriver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}

func TestRequirementQuantityMustBePositive(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	recipe := fx.Recipe("Toast")
	bread := fx.Ingredient("Bread")

	err := db.Create(&models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: bread.ID, Quantity: 0}).Error
	assert.Error(t, err)
}

func TestPantryUniquePerUserAndIngredient(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	user := fx.User(models.RoleUser)
	eggs := fx.Ingredient("Eggs")
	fx.Own(user.ID, eggs)

	err := db.Create(&models.PantryItem{UserID: user.ID, IngredientID: eggs.ID}).Error
	assert.Error(t, err)
}

func TestRecipeEmbeddingIsWriteOnly(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	recipe := fx.Recipe("Pancakes")
	require.NotNil(t, recipe.Embedding)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, "Pancakes", loaded.Title)
	assert.Nil(t, loaded.Embedding)
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)

	for _, table := range []string{"users", "ingredients", "recipes", "recipe_ingredients", "pantry_items", "restrictions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	m, err := database.NewMigrator(sqlDB, zap.NewNop())
	require.NoError(t, err)
	// already applied
	assert.NoError(t, m.Up())
}
