package services

import (
	"context"
	"sync"
	"time"
)

// TTLStore is a keyed in-process cache with a fixed TTL. The clock is injected
// so expiry is testable; entries are dropped lazily on Get and eagerly by
// Sweep. Handlers receive the store explicitly — no package-level state.
type TTLStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]ttlEntry
}

type ttlEntry struct {
	value     interface{}
	expiresAt time.Time
}

func NewTTLStore(ttl time.Duration, now func() time.Time) *TTLStore {
	if now == nil {
		now = time.Now
	}
	return &TTLStore{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]ttlEntry),
	}
}

func (s *TTLStore) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ttlEntry{value: value, expiresAt: s.now().Add(s.ttl)}
}

func (s *TTLStore) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (s *TTLStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Purge drops everything, expired or not.
func (s *TTLStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]ttlEntry)
}

func (s *TTLStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts expired entries on an interval until ctx is cancelled.
func (s *TTLStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-ctx.Done():
			return
		}
	}
}

func (s *TTLStore) sweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
