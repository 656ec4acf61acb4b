package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ideaboard/idea-voting/internal/api/middleware"
	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// fixedTokens validates exactly one token, "ok", into the given claims.
type fixedTokens struct {
	claims *domain.Claims
}

func (f fixedTokens) Issue(*domain.User, []string, time.Time) (string, error) {
	return "ok", nil
}

func (f fixedTokens) Validate(token string, _ time.Time) (*domain.Claims, error) {
	if token != "ok" {
		return nil, domain.ErrBadSignature
	}
	return f.claims, nil
}

// withClaims runs the real guard over c so the claims land where handlers
// look for them.
func withClaims(c echo.Context, claims *domain.Claims) {
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer ok")
	_ = middleware.Guard(fixedTokens{claims: claims}, middleware.AuthenticatedOnly, nil)(
		func(echo.Context) error { return nil },
	)(c)
}
