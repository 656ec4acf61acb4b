package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ideaboard/idea-voting/internal/core/domain"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 24 * time.Hour

// TokenConfig holds the signing settings loaded once at startup.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// tokenClaims is the JWT payload. The subject carries the user id.
type tokenClaims struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 bearer tokens. It is stateless and
// safe for concurrent use.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// Issue mints a token for user that expires TokenLifetime after now.
func (s *TokenService) Issue(user *domain.User, roles []string, now time.Time) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	claims := tokenClaims{
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature first, then expiry, issuer and audience, and
// returns the embedded identity.
func (s *TokenService) Validate(token string, now time.Time) (*domain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)

	var claims tokenClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if claims.Subject == "" {
		return nil, domain.ErrMalformedToken
	}

	out := &domain.Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Roles:    claims.Roles,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// classifyTokenError maps jwt parser errors onto the domain taxonomy. The
// parser joins several claim errors together, so the order of the checks
// decides which one is reported.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return domain.ErrAudienceMismatch
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
