// Package users holds the accounts actors log in with. Roles are read here and
// nowhere else; the rest of the service only sees identity.Actor.
package users

import (
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/territory-leads/internal/identity"
)

// ErrUserNotFound is returned when no account matches.
var ErrUserNotFound = errors.New("users: not found")

// User is an account row.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name,omitempty"`
	Role         identity.Role `json:"role"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Actor is the identity a session for this user carries.
func (u *User) Actor() identity.Actor {
	return identity.Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

// NormalizeEmail lowercases and trims an address for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
