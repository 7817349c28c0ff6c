package tasks

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the identity claim reconstructed from a verified credential
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Role() RoleCode
	IsAtLeast(min RoleCode) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. It is produced
// only by the token service and is immutable once signed.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	Uname    string   `json:"username,omitempty"`
	UserRole RoleCode `json:"role,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, falling back to the subject claim
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the username embedded at issue time
func (c *JWTClaims) Username() string {
	return c.Uname
}

// Role returns the privilege level
func (c *JWTClaims) Role() RoleCode {
	return c.UserRole
}

// IsAtLeast checks if the claim's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(min RoleCode) bool {
	return c.UserRole.IsAtLeast(min)
}

// RoleLevel exposes the raw privilege level for the route-guard middleware,
// which mirrors claims through a local interface to avoid an import cycle.
func (c *JWTClaims) RoleLevel() int {
	return c.UserRole.Level()
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
