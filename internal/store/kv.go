// Package store provides the key-value persistence port used by the
// comparison packages, plus its Redis-backed production implementation
// and an in-memory fake for tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Namespaces for the three independent collections the comparison core
// persists. Keys are composed per user via Key().
const (
	NSRecentComparisons = "recentComparisons"
	NSSavedComparisons  = "savedComparisons"
	NSComparisonQueue   = "comparisonQueue"
)

// ErrNotFound is returned by Load when no value exists under the key.
var ErrNotFound = errors.New("key not found")

// KV is the persistence port. Values are opaque JSON blobs; callers own
// (de)serialization and must tolerate malformed stored data.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Key builds the storage key for a namespace scoped to one user.
func Key(namespace, userID string) string {
	return fmt.Sprintf("compare:%s:%s", namespace, userID)
}

// ─── Redis implementation ────────────────────────────────────────────────────

// RedisKV persists blobs as plain Redis strings.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV returns a KV backed by the given Redis client.
func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (s *RedisKV) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisKV) Save(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (s *RedisKV) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	return nil
}

// ─── In-memory implementation ────────────────────────────────────────────────

// MemKV is an in-memory KV used by tests.
type MemKV struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailSaves makes every Save return an error, for exercising
	// persistence-failure paths.
	FailSaves bool
}

// NewMemKV returns an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

func (s *MemKV) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

func (s *MemKV) Save(ctx context.Context, key string, value []byte) error {
	if s.FailSaves {
		return errors.New("save failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *MemKV) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Put seeds a raw value, bypassing FailSaves. Test helper.
func (s *MemKV) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}
