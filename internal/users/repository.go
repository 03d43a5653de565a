package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/territory-leads/internal/identity"
)

// Repository reads and seeds accounts.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ListByRole(ctx context.Context, role identity.Role) ([]*User, error)
	// Upsert creates the user or, when the email exists, updates its role,
	// name and password hash. It fills in ID and CreatedAt.
	Upsert(ctx context.Context, user *User) error
}

// InMemoryRepository keeps accounts in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

// ListByRole returns users holding role ordered by email.
func (r *InMemoryRepository) ListByRole(ctx context.Context, role identity.Role) ([]*User, error) {
	r.mu.RLock()
	out := []*User{}
	for _, stored := range r.byID {
		if stored.Role == role {
			u := *stored
			out = append(out, &u)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *InMemoryRepository) Upsert(ctx context.Context, user *User) error {
	email := NormalizeEmail(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byEmail[email]; ok {
		stored := r.byID[id]
		stored.Role = user.Role
		stored.PasswordHash = user.PasswordHash
		if user.Name != "" {
			stored.Name = user.Name
		}
		*user = *stored
		return nil
	}

	stored := *user
	stored.ID = uuid.New().String()
	stored.Email = email
	stored.CreatedAt = time.Now().UTC()
	r.byID[stored.ID] = &stored
	r.byEmail[email] = stored.ID
	*user = stored
	return nil
}
