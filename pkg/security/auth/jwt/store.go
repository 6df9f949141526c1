package jwt

import (
	"context"
	"sync"
	"time"
)

// Store defines the interface for token revocation storage.
// Implementations can use Redis or in-memory storage.
type Store interface {
	// Revoke marks a token as revoked.
	// The token should be stored until its natural expiration (TTL).
	Revoke(ctx context.Context, token string, expiration time.Duration) error

	// IsRevoked checks if a token has been revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// Close releases any resources used by the store.
	Close() error
}

// MemoryStore is an in-memory implementation of Store.
// Suitable for single-instance deployments or testing.
// For distributed systems, use the Redis-backed store.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiration time

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// NewMemoryStore creates a new in-memory token store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		tokens:          make(map[string]time.Time),
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Revoke marks a token as revoked.
func (s *MemoryStore) Revoke(ctx context.Context, token string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = time.Now().Add(expiration)
	return nil
}

// IsRevoked checks if a token has been revoked.
func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, exists := s.tokens[token]
	if !exists {
		return false, nil
	}

	// Revocation entry itself may have expired
	if time.Now().After(exp) {
		return false, nil
	}

	return true, nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// Size returns the number of revoked tokens in the store.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// cleanup periodically removes expired entries.
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.doCleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// doCleanup removes expired entries.
func (s *MemoryStore) doCleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for token, exp := range s.tokens {
		if now.After(exp) {
			delete(s.tokens, token)
		}
	}
}
