package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.AuthResponse{Token: token, User: user})
}
