package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrForbidden      = errors.New("access forbidden")

	ErrDuplicateIdentity  = errors.New("a user with this username or email already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrAuthentication)
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")

	ErrIdeaNotFound  = errors.New("idea not found")
	ErrDuplicateVote = errors.New("you have already voted for this idea")
)

// Token validation failures. All of them match ErrAuthentication.
var (
	ErrBadSignature     = fmt.Errorf("token signature is invalid: %w", ErrAuthentication)
	ErrTokenExpired     = fmt.Errorf("token has expired: %w", ErrAuthentication)
	ErrIssuerMismatch   = fmt.Errorf("token issuer mismatch: %w", ErrAuthentication)
	ErrAudienceMismatch = fmt.Errorf("token audience mismatch: %w", ErrAuthentication)
	ErrMalformedToken   = fmt.Errorf("token is malformed: %w", ErrAuthentication)
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
