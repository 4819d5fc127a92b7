package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/testhelpers"
	"github.com/pantrychef/backend/internal/types"
)

func TestPantryLifecycle(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	inv := testhelpers.NewCountingInvalidator()
	svc := service.NewPantryService(db, inv, zap.NewNop())
	ctx := context.Background()

	user := fx.User(models.RoleUser)
	milk, eggs := fx.Ingredient("Milk"), fx.Ingredient("Eggs")

	qty := 2.0
	unit := " liters "
	item, err := svc.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: milk.ID, Quantity: &qty, Unit: &unit})
	require.NoError(t, err)
	assert.Equal(t, "Milk", item.Ingredient.Name)
	require.NotNil(t, item.Unit)
	assert.Equal(t, "liters", *item.Unit)

	_, err = svc.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: eggs.ID})
	require.NoError(t, err)

	items, err := svc.ListPantry(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Eggs", items[0].Ingredient.Name)
	assert.Equal(t, "Milk", items[1].Ingredient.Name)

	newQty := 1.5
	updated, err := svc.UpdatePantryItem(ctx, user.ID, item.ID, &types.UpdatePantryItemRequest{Quantity: &newQty})
	require.NoError(t, err)
	assert.Equal(t, 1.5, *updated.Quantity)

	require.NoError(t, svc.RemovePantryItem(ctx, user.ID, item.ID))
	items, err = svc.ListPantry(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.Equal(t, 4, inv.UserCount(user.ID))
	assert.Zero(t, inv.CatalogCount())
}

func TestPantryRejectsDuplicatesAndUnknownIngredients(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	inv := testhelpers.NewCountingInvalidator()
	svc := service.NewPantryService(db, inv, zap.NewNop())
	ctx := context.Background()

	user := fx.User(models.RoleUser)
	milk := fx.Ingredient("Milk")
	fx.Own(user.ID, milk)

	_, err := svc.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: milk.ID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = svc.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: uuid.New()})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	negative := -1.0
	_, err = svc.AddPantryItem(ctx, user.ID, &types.AddPantryItemRequest{IngredientID: milk.ID, Quantity: &negative})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	assert.Zero(t, inv.UserCount(user.ID))
}

func TestPantryOwnership(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	mockInv := &testhelpers.MockInvalidator{}
	svc := service.NewPantryService(db, mockInv, zap.NewNop())
	ctx := context.Background()

	owner, intruder := fx.User(models.RoleUser), fx.User(models.RoleUser)
	items := fx.Own(owner.ID, fx.Ingredient("Milk"))

	qty := 3.0
	_, err := svc.UpdatePantryItem(ctx, intruder.ID, items[0].ID, &types.UpdatePantryItemRequest{Quantity: &qty})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	err = svc.RemovePantryItem(ctx, intruder.ID, items[0].ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	err = svc.RemovePantryItem(ctx, owner.ID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	intruderItems, err := svc.ListPantry(ctx, intruder.ID)
	require.NoError(t, err)
	assert.Empty(t, intruderItems)

	mockInv.AssertNotCalled(t, "InvalidateUser", ctx, owner.ID)
	mockInv.AssertNotCalled(t, "InvalidateUser", ctx, intruder.ID)
}
