package bootstrap

import (
	"context"
	"fmt"

	"github.com/wolfman30/territory-leads/internal/auth"
	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/internal/users"
)

// SeedAccount is a login to create or refresh.
type SeedAccount struct {
	Email    string
	Name     string
	Role     identity.Role
	Password string
}

// DefaultAccounts are the development logins: one admin and one relationship
// manager. cmd/seed writes them to Postgres; cmd/api loads them into the
// in-memory store when no database is configured.
var DefaultAccounts = []SeedAccount{
	{Email: "admin@territory.local", Name: "Admin User", Role: identity.RoleAdmin, Password: "Admin1234!"},
	{Email: "rm@territory.local", Name: "RM User", Role: identity.RoleRM, Password: "Rm1234!"},
}

// SeedUsers upserts each account by email, resetting its role and password.
// Running it twice leaves one row per email.
func SeedUsers(ctx context.Context, repo users.Repository, accounts []SeedAccount) ([]*users.User, error) {
	out := make([]*users.User, 0, len(accounts))
	for _, acct := range accounts {
		hash, err := auth.HashPassword(acct.Password)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: hash password for %s: %w", acct.Email, err)
		}
		u := &users.User{
			Email:        acct.Email,
			Name:         acct.Name,
			Role:         acct.Role,
			PasswordHash: hash,
		}
		if err := repo.Upsert(ctx, u); err != nil {
			return nil, fmt.Errorf("bootstrap: seed %s: %w", acct.Email, err)
		}
		out = append(out, u)
	}
	return out, nil
}
