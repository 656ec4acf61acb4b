package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.NewValidationError("title is required"), http.StatusBadRequest},
		{domain.ErrDuplicateIdentity, http.StatusBadRequest},
		{domain.ErrDuplicateVote, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrTokenExpired, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrIdeaNotFound, http.StatusNotFound},
		{fmt.Errorf("cast vote: %w", domain.ErrIdeaNotFound), http.StatusNotFound},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		handle(tc.err, c)
		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("pq: password authentication failed"), c)

	if got := rec.Body.String(); got != "{\"error\":\"internal server error\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
