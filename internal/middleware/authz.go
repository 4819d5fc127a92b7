package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/apperrors"
)

// PolicyEnforcer decides whether a role may call a route.
type PolicyEnforcer interface {
	Allowed(role, path, method string) (bool, error)
}

// Authorize rejects requests whose role is not allowed on the request path.
// It must run after AuthMiddleware.
func Authorize(enforcer PolicyEnforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		allowed, err := enforcer.Allowed(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			abortWithError(c, apperrors.Internal(err))
			return
		}
		if !allowed {
			abortWithError(c, apperrors.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}
