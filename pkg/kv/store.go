// Package kv provides a generic thread-safe key-value cache with optional
// per-entry TTLs. It backs the TUI's page and search-result caches, where
// entries go stale on their own rather than being invalidated one by one.
package kv

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiry
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store is a thread-safe generic key-value cache.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
}

// New creates a new key-value cache.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]entry[V]),
	}
}

// Get retrieves a value by key. Entries past their TTL are treated as missing.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key]
	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value by key with no expiry.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry[V]{value: value}
}

// SetTTL stores a value that expires after the given duration.
func (s *Store[K, V]) SetTTL(key K, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes a key from the cache.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Clear removes all entries from the cache.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[K]entry[V])
}

// Len returns the number of live (unexpired) entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	n := 0
	for _, e := range s.data {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Keys returns all live keys in the cache.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	keys := make([]K, 0, len(s.data))
	for k, e := range s.data {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}
