package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/territory-leads/internal/identity"
)

// PgxPool is the subset of pgxpool.Pool the repository uses.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores accounts in the users table.
type PostgresRepository struct {
	pool PgxPool
}

func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, COALESCE(name, ''), role, password_hash, created_at`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
	return r.scanOne(row)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return r.scanOne(row)
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role identity.Role) ([]*User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY email`, string(role))
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	out := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash,
			name = COALESCE(EXCLUDED.name, users.name),
			updated_at = now()
		RETURNING id, created_at
	`
	email := NormalizeEmail(user.Email)
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, uuid.New(), email, user.Name, string(user.Role), user.PasswordHash).
		Scan(&id, &user.CreatedAt); err != nil {
		return fmt.Errorf("users: upsert failed: %w", err)
	}
	user.ID = id.String()
	user.Email = email
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u    User
		id   uuid.UUID
		role string
	)
	if err := row.Scan(&id, &u.Email, &u.Name, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = id.String()
	u.Role = identity.Role(role)
	return &u, nil
}
