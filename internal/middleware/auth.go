package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// Context keys set by AuthMiddleware
const (
	ProfileIDKey = "profile_id"
	UsernameKey  = "username"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		// Store profile info in context
		c.Set(ProfileIDKey, claims.ProfileID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// UserNameFunc maps a raw user name to the stored form
type UserNameFunc func(raw string) (string, error)

// RequireSameUser rejects requests whose path parameter names a different
// user than the token. Names are compared exactly after canonical applies to
// the parameter. It must run after AuthMiddleware.
func RequireSameUser(param string, canonical UserNameFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, err := canonical(c.Param(param))
		if err != nil || name == "" || name != AuthenticatedUser(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You can only change your own profile",
				"code":  apperror.CodeForbidden,
			})
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the token user when a valid bearer token is sent and
// lets every request through.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if ok {
			if claims, err := validator.ValidateToken(token); err == nil {
				c.Set(ProfileIDKey, claims.ProfileID)
				c.Set(UsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// AuthenticatedUser returns the username from a validated token, or ""
func AuthenticatedUser(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  apperror.CodeUnauthorized,
	})
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
