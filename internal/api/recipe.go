package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// maxIndexBody bounds the JSON body of an indexing batch
const maxIndexBody = 10 << 20

type RecipeHandler struct {
	search           service.ISearchService
	recipes          service.IRecipeService
	indexer          service.IIndexService
	searchMiddleware []gin.HandlerFunc
}

func NewRecipeHandler(search service.ISearchService, recipes service.IRecipeService, indexer service.IIndexService, searchMiddleware ...gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{
		search:           search,
		recipes:          recipes,
		indexer:          indexer,
		searchMiddleware: searchMiddleware,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	search := append(append([]gin.HandlerFunc{}, h.searchMiddleware...), h.Search)

	recipes := router.Group("/recipes")
	{
		recipes.POST("/search", search...)
		recipes.GET("/recipe/:id", h.GetRecipe)
		recipes.GET("/popular", h.Popular)
		recipes.GET("/random", h.Random)
		recipes.GET("/health", h.Health)
		recipes.POST("/index", middleware.BodySizeLimit(maxIndexBody), h.Index)
	}
}

// Search runs the suggestion pipeline for a set of ingredients
func (h *RecipeHandler) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	resp, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": recipe})
}

func (h *RecipeHandler) Popular(c *gin.Context) {
	recipes, err := h.recipes.Popular(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": recipes})
}

func (h *RecipeHandler) Random(c *gin.Context) {
	recipe, err := h.search.Random()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe": recipe})
}

func (h *RecipeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.recipes.Health(c.Request.Context()))
}

// Index embeds and stores a batch of recipes
func (h *RecipeHandler) Index(c *gin.Context) {
	var req types.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.indexer.Index(c.Request.Context(), req.Recipes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"indexed":  result.Indexed,
		"embedded": result.Embedded,
	})
}
