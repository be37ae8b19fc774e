package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a small TTL map used to memoize read-only list calls.
type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]entry
}

func NewStore() *Store {
	return &Store{now: time.Now, items: map[string]entry{}}
}

func (s *Store) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		delete(s.items, key)
		return nil, false
	}
	return item.value, true
}

// Set stores value under key. A non-positive ttl never expires.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if s == nil || key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry := time.Time{}
	if ttl > 0 {
		expiry = s.now().Add(ttl)
	}
	s.items[key] = entry{value: value, expiresAt: expiry}
}

func (s *Store) Delete(key string) {
	if s == nil || key == "" {
		return
	}
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Purge drops every entry, expired or not.
func (s *Store) Purge() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.items = map[string]entry{}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
