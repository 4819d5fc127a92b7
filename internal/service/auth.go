package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

const tokenIssuer = "pantrychef"

type AuthService struct {
	db         *gorm.DB
	jwtSecret  string
	expiration time.Duration
	logger     *zap.Logger
}

func NewAuthService(db *gorm.DB, jwtSecret string, expiration time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:         db,
		jwtSecret:  jwtSecret,
		expiration: expiration,
		logger:     logger.Named("auth"),
	}
}

// Register creates a user with the default role.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translate(err, "user")
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks credentials. Unknown emails and wrong passwords fail the same
// way.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.StorageUnavailable(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return &user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// GenerateToken issues an HS256 token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	if claims.UserID == uuid.Nil {
		return nil, apperrors.Unauthorized("invalid token claims")
	}
	return claims, nil
}
