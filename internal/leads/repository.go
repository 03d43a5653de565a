package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/territory-leads/internal/access"
)

// Repository defines the interface for lead storage. Leads are never deleted.
type Repository interface {
	// Create assigns the id and creation time and stores the lead.
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	// List returns leads passing filter, newest first.
	List(ctx context.Context, filter access.LeadFilter) ([]*Lead, error)
}

// InMemoryRepository keeps leads in process memory for development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		now:   time.Now,
	}
}

// Create stores a copy of lead.
func (r *InMemoryRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.AssignedToID == "" {
		return ErrMissingOwner
	}
	lead.ID = uuid.New().String()
	lead.CreatedAt = r.now().UTC()

	stored := *lead
	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.mu.Unlock()
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

// List returns matching leads ordered by creation time, newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter access.LeadFilter) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		if lead.Matches(filter) {
			cp := *lead
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
