package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ideaboard/idea-voting/internal/api/middleware"
	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// ctxClaims returns the claims stored by the guard. Routes mounted without an
// authenticated guard have none, which is reported as 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
