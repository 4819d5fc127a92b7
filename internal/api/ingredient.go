package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

type IngredientHandler struct {
	ingredientService service.IIngredientService
}

func NewIngredientHandler(ingredientService service.IIngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", h.CreateIngredient)
		ingredients.DELETE("/:id", h.DeleteIngredient)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	var filter types.IngredientFilter
	if !bindQuery(c, &filter) {
		return
	}
	ingredients, err := h.ingredientService.ListIngredients(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.CreateIngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.ingredientService.CreateIngredient(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.ingredientService.DeleteIngredient(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
