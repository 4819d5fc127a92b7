package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

type RecommendationHandler struct {
	recommendationService service.IRecommendationService
}

func NewRecommendationHandler(recommendationService service.IRecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup) {
	recommendations := router.Group("/recommendations")
	{
		recommendations.GET("", h.ListRecommendations)
		recommendations.GET("/:recipe_id", h.GetRecommendation)
	}
}

// ListRecommendations returns the caller's eligible recipes, best first.
func (h *RecommendationHandler) ListRecommendations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q types.RecommendationQuery
	if !bindQuery(c, &q) {
		return
	}

	recs, err := h.recommendationService.Recommend(c.Request.Context(), userID, q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.RecommendationsResponse{Recommendations: recs, Count: len(recs)})
}

func (h *RecommendationHandler) GetRecommendation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "recipe_id")
	if !ok {
		return
	}

	rec, err := h.recommendationService.RecommendRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
