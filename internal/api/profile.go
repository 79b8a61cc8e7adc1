package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// UserHandler serves profiles, search history and favorites
type UserHandler struct {
	profiles service.IProfileService
	avatars  service.IAvatarService
	tokens   middleware.TokenValidator
}

func NewUserHandler(profiles service.IProfileService, avatars service.IAvatarService, tokens middleware.TokenValidator) *UserHandler {
	return &UserHandler{
		profiles: profiles,
		avatars:  avatars,
		tokens:   tokens,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.tokens)

	users := router.Group("/users")
	{
		users.POST("/profile", h.UpsertProfile)
		users.GET("/profile/:username", h.GetProfile)
		if h.avatars != nil {
			users.PUT("/profile/:username/avatar", auth, middleware.RequireSameUser("username", service.CanonicalUserName), h.UploadAvatar)
		}
		users.GET("/search-history/:username", h.SearchHistory)
		users.GET("/favorites/:username", h.Favorites)
		users.POST("/favorites", auth, h.AddFavorite)
		users.DELETE("/favorites/:username/:recipeId", auth, middleware.RequireSameUser("username", service.CanonicalUserName), h.RemoveFavorite)
	}
}

func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req types.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	profile, token, err := h.profiles.UpsertProfile(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"userId":  profile.ID,
	}
	if token != "" {
		body["token"] = token
	}
	c.JSON(http.StatusOK, body)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// UploadAvatar stores the multipart "avatar" file for the user
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil {
		badRequest(c, "avatar file is required")
		return
	}
	if header.Size > service.MaxAvatarSize {
		badRequest(c, "avatar exceeds the 5MB limit")
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, apperror.Internal(err, apperror.CodeAvatar, "Failed to read avatar"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxAvatarSize+1))
	if err != nil {
		writeError(c, apperror.Internal(err, apperror.CodeAvatar, "Failed to read avatar"))
		return
	}

	url, err := h.avatars.UploadAvatar(c.Request.Context(), c.Param("username"), data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "avatarUrl": url})
}

func (h *UserHandler) SearchHistory(c *gin.Context) {
	entries, page, err := h.profiles.SearchHistory(
		c.Request.Context(),
		c.Param("username"),
		queryInt(c, "page"),
		queryInt(c, "limit"),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "searches": entries, "pagination": page})
}

func (h *UserHandler) Favorites(c *gin.Context) {
	favorites, err := h.profiles.Favorites(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "favorites": favorites})
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	var req types.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	// a blank or invalid userName is reported by the service
	if name, err := service.CanonicalUserName(req.UserName); err == nil && name != middleware.AuthenticatedUser(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You can only change your own favorites",
			"code":  apperror.CodeForbidden,
		})
		return
	}

	favorite, created, err := h.profiles.AddFavorite(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Recipe already in favorites",
			"favoriteId": favorite.ID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Recipe added to favorites",
		"favoriteId": favorite.ID,
	})
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	if err := h.profiles.RemoveFavorite(c.Request.Context(), c.Param("username"), c.Param("recipeId")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Recipe removed from favorites"})
}
