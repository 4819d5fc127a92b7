package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/testhelpers"
	"github.com/pantrychef/backend/internal/types"
)

const testSecret = "test-secret-with-at-least-32-characters"

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, testSecret, time.Hour, zap.NewNop())
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.RegisterRequest{Email: "Cook@Example.com", Password: "password123", Name: "Cook"})
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Register(ctx, &types.RegisterRequest{Email: "cook@example.com", Password: "password456", Name: "Again"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	loggedIn, err := svc.Login(ctx, &types.LoginRequest{Email: "COOK@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "cook@example.com", Password: "wrong-password"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestTokenRoundTrip(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, testSecret, time.Hour, zap.NewNop())
	admin := testhelpers.NewFixtures(t, db).User(models.RoleAdmin)

	token, err := svc.GenerateToken(admin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, admin.Email, claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.NewFixtures(t, db).User(models.RoleUser)

	expired, err := service.NewAuthService(db, testSecret, -time.Minute, zap.NewNop()).GenerateToken(user)
	require.NoError(t, err)
	foreign, err := service.NewAuthService(db, "another-secret-with-at-least-32-chars", time.Hour, zap.NewNop()).GenerateToken(user)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, types.TokenClaims{UserID: user.ID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := service.NewAuthService(db, testSecret, time.Hour, zap.NewNop())
	for name, token := range map[string]string{
		"expired":  expired,
		"foreign":  foreign,
		"unsigned": unsigned,
		"garbage":  "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
		})
	}
}
