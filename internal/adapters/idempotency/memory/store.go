package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	payload   []byte // nil = en curso
	expiresAt time.Time
}

// Store es el idempotency.Store de un solo proceso.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *Store) Begin(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.payload, false, nil
	}

	s.entries[key] = entry{expiresAt: now.Add(ttl)}
	s.evictLocked(now)
	return nil, true, nil
}

func (s *Store) Complete(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{payload: payload, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Abort(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *Store) evictLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
