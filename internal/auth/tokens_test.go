package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/territory-leads/internal/identity"
)

var rmActor = identity.Actor{ID: "11111111-1111-1111-1111-111111111111", Email: "rm@territory.local", Role: identity.RoleRM}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, expires, err := svc.Issue(rmActor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	actor, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, rmActor, actor)
}

func TestVerifyRejectsForgedAndExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	other := NewTokenService("other-secret", time.Minute)

	forged, _, err := other.Issue(rmActor)
	require.NoError(t, err)
	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }
	stale, _, err := svc.Issue(rmActor)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.Verify(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Role: "SUPERUSER",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretDisablesSessions(t *testing.T) {
	svc := NewTokenService("", 0)

	_, _, err := svc.Issue(rmActor)
	assert.ErrorIs(t, err, ErrAuthDisabled)
	_, err = svc.Verify("anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
	assert.Equal(t, DefaultSessionTTL, svc.ttl)
}
