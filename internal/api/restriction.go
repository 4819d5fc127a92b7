package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

type RestrictionHandler struct {
	restrictionService service.IRestrictionService
}

func NewRestrictionHandler(restrictionService service.IRestrictionService) *RestrictionHandler {
	return &RestrictionHandler{restrictionService: restrictionService}
}

func (h *RestrictionHandler) RegisterRoutes(router *gin.RouterGroup) {
	restrictions := router.Group("/restrictions")
	{
		restrictions.GET("", h.ListRestrictions)
		restrictions.POST("", h.AddRestriction)
		restrictions.DELETE("/:id", h.RemoveRestriction)
	}
}

func (h *RestrictionHandler) ListRestrictions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	restrictions, err := h.restrictionService.ListRestrictions(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restrictions": restrictions})
}

func (h *RestrictionHandler) AddRestriction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.AddRestrictionRequest
	if !bindJSON(c, &req) {
		return
	}
	restriction, err := h.restrictionService.AddRestriction(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, restriction)
}

func (h *RestrictionHandler) RemoveRestriction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.restrictionService.RemoveRestriction(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
