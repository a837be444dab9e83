package application

import (
	"time"

	"github.com/cabgo/rider-web/internal/common/auth"
)

// Identity is the signed-in rider attached to a session.
type Identity struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      auth.Role `json:"role"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Valid reports whether the identity can still be used at now.
// A token without an expiry stays valid until sign-out.
func (i *Identity) Valid(now time.Time) bool {
	if i == nil || i.Token == "" {
		return false
	}
	return i.ExpiresAt.IsZero() || now.Before(i.ExpiresAt)
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == auth.RoleAdmin
}
