package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/internal/users"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// UserLookup finds accounts by email.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// Session is a successful login.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Actor     identity.Actor `json:"actor"`
}

// Authenticator checks credentials against user rows.
type Authenticator struct {
	users  UserLookup
	tokens *TokenService
}

func NewAuthenticator(lookup UserLookup, tokens *TokenService) *Authenticator {
	return &Authenticator{users: lookup, tokens: tokens}
}

// Login verifies email and password and issues a session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if _, err := identity.ParseRole(string(user.Role)); err != nil {
		return nil, ErrInvalidCredentials
	}

	actor := user.Actor()
	token, expires, err := a.tokens.Issue(actor)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Actor: actor}, nil
}

// HashPassword returns a bcrypt hash suitable for users.User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("territory-dummy-password"), bcrypt.DefaultCost)
	})
	return dummy
}
