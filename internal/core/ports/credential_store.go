package ports

import (
	"context"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// CredentialStore persists user identities and their role assignments.
//
// Implementations hash passwords themselves; callers never see or compare
// raw password material beyond handing it to Create and VerifyPassword.
type CredentialStore interface {
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create stores user with a salted one-way hash of password. It returns
	// domain.ErrDuplicateIdentity when the username or email is taken.
	Create(ctx context.Context, user *domain.User, password string) (*domain.User, error)
	VerifyPassword(ctx context.Context, user *domain.User, password string) bool
	RolesOf(ctx context.Context, user *domain.User) ([]string, error)
	// EnsureRole creates the role if absent. Concurrent first-time calls for
	// the same name must all succeed without creating duplicates.
	EnsureRole(ctx context.Context, name string) error
	// AssignRole links user to an existing role. It returns
	// domain.ErrRoleNotFound if the role was never ensured.
	AssignRole(ctx context.Context, user *domain.User, name string) error
}
