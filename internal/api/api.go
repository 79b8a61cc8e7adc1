package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/service"
)

// Services bundles everything the HTTP handlers depend on. Avatars may be
// nil when object storage is disabled.
type Services struct {
	Search  service.ISearchService
	Recipes service.IRecipeService
	Indexer service.IIndexService
	Profile service.IProfileService
	Avatars service.IAvatarService
	Tokens  middleware.TokenValidator

	// SearchMiddleware runs in front of POST /recipes/search only
	SearchMiddleware []gin.HandlerFunc
}

// SetupAPI registers every handler under /api/v1
func SetupAPI(router *gin.Engine, svc Services) {
	v1 := router.Group("/api/v1")
	{
		recipeHandler := NewRecipeHandler(svc.Search, svc.Recipes, svc.Indexer, svc.SearchMiddleware...)
		userHandler := NewUserHandler(svc.Profile, svc.Avatars, svc.Tokens)

		recipeHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1)
	}
}

// writeError renders err as {"error", "code"}. Causes are only exposed
// while gin runs in debug mode.
func writeError(c *gin.Context, err error) {
	ae, ok := apperror.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  apperror.CodeInternal,
		})
		return
	}

	body := gin.H{"error": ae.Message, "code": ae.Code}
	if ae.Err != nil && gin.IsDebugging() {
		body["details"] = ae.Err.Error()
	}
	c.JSON(ae.Status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": apperror.CodeValidation})
}

// queryInt parses an integer query parameter, returning 0 when it is
// absent or malformed so services apply their defaults
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
