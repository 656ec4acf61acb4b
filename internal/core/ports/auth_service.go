package ports

import (
	"context"
	"time"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

type AuthService interface {
	// Register creates the account and returns the role it was granted.
	Register(ctx context.Context, in RegisterInput) (string, error)
	// Login returns a signed bearer token for valid credentials.
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenService mints and checks bearer tokens.
type TokenService interface {
	Issue(user *domain.User, roles []string, now time.Time) (string, error)
	Validate(token string, now time.Time) (*domain.Claims, error)
}
