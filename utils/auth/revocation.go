package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vivekdhawan/gravimetry-api/utils/cache"
)

// RevocationSet records access tokens (by JTI) that were explicitly revoked
// before their natural expiry. A revoked token stays unusable until it would
// have expired anyway; entries past that point may be pruned.
type RevocationSet interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Prune drops entries whose tokens are past their natural expiry and
	// returns the number removed.
	Prune(ctx context.Context) (int, error)
}

// MemoryRevocationSet is a process-wide, mutex-guarded revocation set.
// It is cleared on restart, which is acceptable: tokens issued by a
// restarted process are new and old ones expire within 30 minutes.
type MemoryRevocationSet struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> natural token expiry
}

// NewMemoryRevocationSet creates an empty in-memory revocation set
func NewMemoryRevocationSet() *MemoryRevocationSet {
	return &MemoryRevocationSet{
		entries: make(map[string]time.Time),
	}
}

func (s *MemoryRevocationSet) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
	return nil
}

func (s *MemoryRevocationSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiresAt, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	// An expired entry no longer matters; the token fails validation anyway.
	return time.Now().Before(expiresAt), nil
}

func (s *MemoryRevocationSet) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	now := time.Now()
	for jti, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked entries
func (s *MemoryRevocationSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RedisRevocationSet backs the revocation set with Redis so revocations
// survive restarts and are shared across replicas. Entries carry a TTL
// matching the token's natural expiry, so pruning is handled by Redis.
type RedisRevocationSet struct {
	cache *cache.RedisCache
}

// NewRedisRevocationSet creates a Redis-backed revocation set
func NewRedisRevocationSet(redisCache *cache.RedisCache) *RedisRevocationSet {
	return &RedisRevocationSet{cache: redisCache}
}

func revocationKey(jti string) string {
	return fmt.Sprintf("revoked_token:%s", jti)
}

func (s *RedisRevocationSet) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revocationKey(jti), "revoked", ttl)
}

func (s *RedisRevocationSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.cache.Exists(ctx, revocationKey(jti))
}

func (s *RedisRevocationSet) Prune(_ context.Context) (int, error) {
	// Redis expires entries itself via TTL.
	return 0, nil
}
