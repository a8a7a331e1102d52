package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsedTokens remembers redeemed reset tokens until they would have expired anyway.
type UsedTokens interface {
	// MarkUsed records token and reports whether this call was the first to do so.
	MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error)
	IsUsed(ctx context.Context, token string) (bool, error)
}

func usedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "reset:used:" + hex.EncodeToString(sum[:])
}

type RedisUsedTokens struct {
	client *redis.Client
}

func NewRedisUsedTokens(client *redis.Client) *RedisUsedTokens {
	return &RedisUsedTokens{client: client}
}

func (s *RedisUsedTokens) MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, usedKey(token), 1, ttl).Result()
}

func (s *RedisUsedTokens) IsUsed(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, usedKey(token)).Result()
	return n > 0, err
}

type MemoryUsedTokens struct {
	mu  sync.Mutex
	m   map[string]time.Time
	now func() time.Time
}

func NewMemoryUsedTokens(now func() time.Time) *MemoryUsedTokens {
	if now == nil {
		now = time.Now
	}
	return &MemoryUsedTokens{m: make(map[string]time.Time), now: now}
}

func (s *MemoryUsedTokens) MarkUsed(_ context.Context, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.m {
		if !now.Before(exp) {
			delete(s.m, k)
		}
	}
	key := usedKey(token)
	if _, ok := s.m[key]; ok {
		return false, nil
	}
	s.m[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryUsedTokens) IsUsed(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.m[usedKey(token)]
	return ok && s.now().Before(exp), nil
}
