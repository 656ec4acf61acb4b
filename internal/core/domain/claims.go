package domain

import (
	"slices"
	"time"
)

// Claims is the identity carried by a validated bearer token. It is the only
// source of identity for authorization decisions.
type Claims struct {
	UserID    string
	Username  string
	Email     string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether role is among the token's roles.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
