package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a profile session token
type TokenClaims struct {
	jwt.RegisteredClaims
	ProfileID string `json:"profile_id"`
	Username  string `json:"username"`
}
