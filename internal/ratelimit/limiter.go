// Package ratelimit gates per-actor call volume with fixed-window counters.
//
// A bucket is keyed by "{scope}:{actorID}". The first hit for a key, or the
// first hit after the window's reset time has passed, opens a new window with
// count 1. Hits are admitted while count < limit; once the limit is reached
// every hit is rejected until resetAt. A burst straddling a window boundary can
// admit up to twice the limit in a short span.
package ratelimit

import (
	"context"
	"time"

	"github.com/wolfman30/territory-leads/pkg/logging"
)

// Decision is the outcome of a single limit check.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// RetryAfter is how long a rejected caller should wait, rounded up to a whole second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed || !d.ResetAt.After(now) {
		return 0
	}
	wait := d.ResetAt.Sub(now)
	if rem := wait % time.Second; rem != 0 {
		wait += time.Second - rem
	}
	return wait
}

// Store holds bucket state. Implementations must make the check-and-increment
// for a key atomic with respect to concurrent callers.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Policy names a gated operation and its budget.
type Policy struct {
	Scope  string
	Limit  int
	Window time.Duration
}

// Key builds the bucket key for actorID under this policy.
func (p Policy) Key(actorID string) string {
	return Key(p.Scope, actorID)
}

var (
	// PlacesSearch budgets directory searches per actor.
	PlacesSearch = Policy{Scope: "places-search", Limit: 20, Window: time.Minute}
	// PlacesDetails budgets place detail lookups per actor.
	PlacesDetails = Policy{Scope: "places-details", Limit: 30, Window: time.Minute}
)

// Key joins an operation scope and an actor id.
func Key(scope, actorID string) string {
	return scope + ":" + actorID
}

// Limiter answers limit checks and never returns an error. When the
// configured store fails, it degrades to an in-process store so calls stay
// counted.
type Limiter struct {
	store    Store
	fallback *MemoryStore
	logger   *logging.Logger
}

// New wraps store. A nil store means in-process counting only.
func New(store Store, logger *logging.Logger) *Limiter {
	if logger == nil {
		logger = logging.Default()
	}
	fallback := NewMemoryStore()
	if store == nil {
		store = fallback
	}
	return &Limiter{store: store, fallback: fallback, logger: logger}
}

// CheckLimit records a hit for key and reports whether it is admitted.
func (l *Limiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) Decision {
	decision, err := l.store.Hit(ctx, key, limit, window)
	if err == nil {
		return decision
	}
	l.logger.Warn("rate limit store unavailable, counting in process", "key", key, "error", err)
	decision, _ = l.fallback.Hit(ctx, key, limit, window)
	return decision
}

// Check applies policy p to actorID.
func (l *Limiter) Check(ctx context.Context, p Policy, actorID string) Decision {
	return l.CheckLimit(ctx, p.Key(actorID), p.Limit, p.Window)
}
