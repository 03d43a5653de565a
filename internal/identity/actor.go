// Package identity describes the authenticated caller as the rest of the
// service sees it: an opaque id and a closed role.
package identity

import (
	"fmt"
	"strings"
)

// Role is the closed set of actor roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	// RoleRM is a relationship manager, the role that discovers and creates leads.
	RoleRM Role = "RM"
)

// ParseRole accepts a role name case-insensitively and rejects anything outside the set.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleRM:
		return RoleRM, nil
	default:
		return "", fmt.Errorf("identity: unknown role %q", raw)
	}
}

// Actor is an authenticated user.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
