// Package api holds the HTTP handlers of the PantryChef API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/middleware"
	"github.com/pantrychef/backend/internal/models"
)

// RegisterValidators adds the custom binding rules used by request types.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("restriction_type", func(fl validator.FieldLevel) bool {
		return models.RestrictionType(fl.Field().String()).Valid()
	})
}

// HealthHandler reports whether the database and, when configured, Redis
// are reachable.
type HealthHandler struct {
	db    *gorm.DB
	redis redis.Cmdable
}

func NewHealthHandler(db *gorm.DB, redisClient redis.Cmdable) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true
	if err := database.HealthCheck(ctx, h.db); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "checks": checks})
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("user not authenticated"))
	}
	return userID, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.BadRequest("invalid " + name).WithDetails(err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return false
	}
	return true
}
