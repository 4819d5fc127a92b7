package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

func TestDashboardStats(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := env.fx.User(models.RoleUser)
	_, ings := env.fx.Omelette()
	bread, jam := env.fx.Ingredient("Bread"), env.fx.Ingredient("Jam")
	env.fx.Recipe("Toast", bread, ings["Butter"])
	env.fx.Recipe("Jam Toast", bread, jam, ings["Butter"])
	env.fx.Own(user.ID, bread, ings["Eggs"], ings["Cheese"], ings["Milk"])
	env.fx.Restrict(user.ID, models.RestrictionDietary, env.fx.Ingredient("Anchovies"))

	stats, err := env.dashboard.GetStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.PantryItems)
	assert.Equal(t, int64(1), stats.Restrictions)
	assert.Equal(t, 3, stats.RecommendedRecipes)
	assert.Zero(t, stats.CookableRecipes)
	// (50 + 50 + 33.33) / 3
	assert.Equal(t, 44.44, stats.AverageVScore)
	assert.Equal(t, []types.MissingCount{
		{Name: "Butter", Count: 3},
		{Name: "Jam", Count: 1},
		{Name: "Pepper", Count: 1},
		{Name: "Salt", Count: 1},
	}, stats.TopMissing)
}

func TestDashboardStatsEmpty(t *testing.T) {
	env := setupEnv(t)
	user := env.fx.User(models.RoleUser)

	stats, err := env.dashboard.GetStats(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.RecommendedRecipes)
	assert.Zero(t, stats.AverageVScore)
	assert.NotNil(t, stats.TopMissing)
	assert.Empty(t, stats.TopMissing)
}
