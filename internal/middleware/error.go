package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/apperrors"
)

// ErrorHandler renders the last error attached to the context as JSON.
// Handlers report failures with c.Error and return without writing.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := toAppError(c.Errors.Last().Err)
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", c.GetString(ContextRequestID)),
				zap.String("code", string(appErr.Code)),
				zap.Error(appErr))
		}

		c.JSON(status, appErr)
	}
}

func toAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(verrs.Error())
	}
	return apperrors.Internal(err)
}

// Recovery recovers from panics and returns a 500 error
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.String("request_id", c.GetString(ContextRequestID)),
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())))
				c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.New(apperrors.CodeInternal, "internal server error"))
			}
		}()
		c.Next()
	}
}
