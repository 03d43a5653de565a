package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultMaxKeys = 10000

type bucket struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps buckets in process memory behind a single mutex. State
// lives until the process exits.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	maxKeys int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxKeys sets the map size at which expired buckets are swept.
func WithMaxKeys(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxKeys = n
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		maxKeys: defaultMaxKeys,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implements Store. It never fails.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok || now.After(b.resetAt) {
		if !ok && len(s.buckets) >= s.maxKeys {
			s.sweepLocked(now)
		}
		b = &bucket{count: 1, resetAt: now.Add(window)}
		s.buckets[key] = b
		return Decision{Allowed: true, Remaining: remaining(limit, b.count), ResetAt: b.resetAt}, nil
	}

	if b.count >= limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: b.resetAt}, nil
	}

	b.count++
	return Decision{Allowed: true, Remaining: remaining(limit, b.count), ResetAt: b.resetAt}, nil
}

// Len reports how many buckets are tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, b := range s.buckets {
		if now.After(b.resetAt) {
			delete(s.buckets, key)
		}
	}
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
