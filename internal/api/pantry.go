package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

type PantryHandler struct {
	pantryService service.IPantryService
}

func NewPantryHandler(pantryService service.IPantryService) *PantryHandler {
	return &PantryHandler{pantryService: pantryService}
}

// RegisterRoutes registers the pantry routes. writeLimit runs before item
// updates and deletions.
func (h *PantryHandler) RegisterRoutes(router *gin.RouterGroup, writeLimit ...gin.HandlerFunc) {
	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writeLimit...), handler)
	}

	pantry := router.Group("/pantry")
	{
		pantry.GET("", h.ListPantry)
		pantry.POST("", h.AddPantryItem)
		pantry.PUT("/:id", limited(h.UpdatePantryItem)...)
		pantry.DELETE("/:id", limited(h.RemovePantryItem)...)
	}
}

func (h *PantryHandler) ListPantry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.pantryService.ListPantry(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *PantryHandler) AddPantryItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AddPantryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.pantryService.AddPantryItem(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *PantryHandler) UpdatePantryItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.UpdatePantryItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.pantryService.UpdatePantryItem(c.Request.Context(), userID, itemID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PantryHandler) RemovePantryItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.pantryService.RemovePantryItem(c.Request.Context(), userID, itemID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
