package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/testhelpers"
	"github.com/pantrychef/backend/internal/types"
)

func TestRestrictionLifecycle(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	user := fx.User(models.RoleUser)
	peanuts, pork := fx.Ingredient("Peanuts"), fx.Ingredient("Pork")

	inv := &testhelpers.MockInvalidator{}
	inv.On("InvalidateUser", mock.Anything, user.ID).Times(3)
	svc := service.NewRestrictionService(db, inv, zap.NewNop())
	ctx := context.Background()

	notes := "anaphylaxis"
	allergy, err := svc.AddRestriction(ctx, user.ID, &types.AddRestrictionRequest{
		IngredientID: peanuts.ID,
		Type:         models.RestrictionAllergy,
		Notes:        &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RestrictionAllergy, allergy.Type)

	_, err = svc.AddRestriction(ctx, user.ID, &types.AddRestrictionRequest{IngredientID: pork.ID, Type: models.RestrictionDietary})
	require.NoError(t, err)

	list, err := svc.ListRestrictions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Peanuts", list[0].Ingredient.Name)
	assert.Equal(t, "Pork", list[1].Ingredient.Name)

	require.NoError(t, svc.RemoveRestriction(ctx, user.ID, allergy.ID))
	inv.AssertExpectations(t)
}

func TestRestrictionValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	fx := testhelpers.NewFixtures(t, db)
	svc := service.NewRestrictionService(db, testhelpers.NewPermissiveInvalidator(), zap.NewNop())
	ctx := context.Background()

	owner, other := fx.User(models.RoleUser), fx.User(models.RoleUser)
	milk := fx.Ingredient("Milk")

	_, err := svc.AddRestriction(ctx, owner.ID, &types.AddRestrictionRequest{IngredientID: milk.ID, Type: "preference"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	existing := fx.Restrict(owner.ID, models.RestrictionDietary, milk)
	_, err = svc.AddRestriction(ctx, owner.ID, &types.AddRestrictionRequest{IngredientID: milk.ID, Type: models.RestrictionAllergy})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	err = svc.RemoveRestriction(ctx, other.ID, existing[0].ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}
