package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account role carried in the backend's session token.
type Role string

const (
	RoleRider Role = "rider"
	RoleAdmin Role = "admin"
)

// Claims is the subset of the backend's session token this service reads.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// ParseUnverified decodes the token's claims without checking its signature.
// The backend owns the signing key and verifies every call it receives; the
// claims are only used here to route the rider (role, expiry, id).
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// Expiry returns the token expiry, or the zero time if the token has none.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
