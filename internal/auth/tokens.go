// Package auth issues and verifies session tokens and checks login
// credentials. Tokens are HS256 JWTs carrying the actor id, email and role.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/territory-leads/internal/identity"
)

const (
	DefaultSessionTTL = 12 * time.Hour
	tokenIssuer       = "territory-leads"
)

var (
	// ErrAuthDisabled means no signing secret is configured.
	ErrAuthDisabled = errors.New("auth: session secret not configured")
	// ErrInvalidToken covers malformed, expired and forged tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// TokenService signs and verifies session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service. An empty secret disables sessions:
// Issue and Verify both fail with ErrAuthDisabled.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a session for actor.
func (s *TokenService) Issue(actor identity.Actor) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrAuthDisabled
	}
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: actor.Email,
		Role:  string(actor.Role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks a token and returns the actor it names.
func (s *TokenService) Verify(tokenString string) (identity.Actor, error) {
	if len(s.secret) == 0 {
		return identity.Actor{}, ErrAuthDisabled
	}
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return identity.Actor{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return identity.Actor{}, ErrInvalidToken
	}
	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Actor{}, ErrInvalidToken
	}
	return identity.Actor{ID: claims.Subject, Email: claims.Email, Role: role}, nil
}
