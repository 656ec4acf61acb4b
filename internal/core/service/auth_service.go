package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ideaboard/idea-voting/internal/core/domain"
	"github.com/ideaboard/idea-voting/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	store  ports.CredentialStore
	tokens ports.TokenService
	now    func() time.Time
	log    zerolog.Logger
}

func NewAuthService(store ports.CredentialStore, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, now: time.Now, log: log}
}

// Register creates the account and grants Admin or User depending on
// in.IsAdmin. Callers are expected to have validated the input shape.
//
// Self-service admin elevation is the current product policy.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return "", domain.NewValidationError("username, email and password are required")
	}

	_, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return "", domain.ErrDuplicateIdentity
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("register: lookup email: %w", err)
	}

	user, err := s.store.Create(ctx, &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		CreatedAt: s.now().UTC(),
	}, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return "", err
		}
		return "", fmt.Errorf("register: create user: %w", err)
	}

	// The user row is committed; finish the role grant even if the client
	// has gone away.
	roleCtx := context.WithoutCancel(ctx)
	role := domain.RoleFor(in.IsAdmin)
	if err := s.store.EnsureRole(roleCtx, role); err != nil {
		return "", fmt.Errorf("register: ensure role %s: %w", role, err)
	}
	if err := s.store.AssignRole(roleCtx, user, role); err != nil {
		return "", fmt.Errorf("register: assign role %s: %w", role, err)
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", role).Msg("user registered")
	return role, nil
}

// Login verifies the credentials and returns a signed token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: lookup user: %w", err)
	}

	if !s.store.VerifyPassword(ctx, user, password) {
		return "", domain.ErrInvalidCredentials
	}

	roles, err := s.store.RolesOf(ctx, user)
	if err != nil {
		return "", fmt.Errorf("login: load roles: %w", err)
	}

	token, err := s.tokens.Issue(user, roles, s.now())
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// SeedRoles ensures every known role exists. It is safe to run on every start.
func SeedRoles(ctx context.Context, store ports.CredentialStore) error {
	for _, role := range domain.Roles {
		if err := store.EnsureRole(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}
	return nil
}
