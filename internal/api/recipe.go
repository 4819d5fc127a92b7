package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/service"
	"github.com/pantrychef/backend/internal/types"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
	imageService  service.IImageService
}

// NewRecipeHandler creates a RecipeHandler. imageService may be nil when no
// bucket is configured; uploads then fail with 503.
func NewRecipeHandler(recipeService service.IRecipeService, imageService service.IImageService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		imageService:  imageService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/ingredients", h.AddRequirement)
		recipes.DELETE("/:id/ingredients/:ingredient_id", h.RemoveRequirement)
		recipes.POST("/:id/image", h.UploadImage)
	}
}

// ListRecipes returns the catalog, or the matches of ?q= when given.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	if q := c.Query("q"); q != "" {
		limit, _ := strconv.Atoi(c.Query("limit"))
		recipes, err := h.recipeService.SearchRecipes(ctx, q, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": recipes})
		return
	}

	recipes, err := h.recipeService.ListRecipes(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddRequirement(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req types.RequirementInput
	if !bindJSON(c, &req) {
		return
	}
	requirement, err := h.recipeService.AddRequirement(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, requirement)
}

func (h *RecipeHandler) RemoveRequirement(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := uuidParam(c, "ingredient_id")
	if !ok {
		return
	}
	if err := h.recipeService.RemoveRequirement(c.Request.Context(), id, ingredientID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stores the multipart "image" file as the recipe's image.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	if h.imageService == nil {
		_ = c.Error(apperrors.New(apperrors.CodeStorageUnavailable, "image uploads are not configured"))
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(apperrors.Validation("multipart field image is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperrors.BadRequest("unreadable upload").WithDetails(err.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxRecipeImageSize+1))
	if err != nil {
		_ = c.Error(apperrors.BadRequest("unreadable upload").WithDetails(err.Error()))
		return
	}

	url, err := h.imageService.UploadRecipeImage(c.Request.Context(), id, data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
