package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Roles lists every role the service knows about. Seeding walks this list.
var Roles = []string{RoleAdmin, RoleUser}

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// NormalizeIdentity folds usernames and emails for uniqueness checks so that
// "Alice" and "alice" collide.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RoleFor picks the role granted at registration.
func RoleFor(isAdmin bool) string {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}
