package result

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/mediatranslator/internal/cache"
	"github.com/nikhilbhutani/mediatranslator/internal/models"
)

const keyPrefix = "mediatranslator:last-result:"

// RedisStore keeps the slot in Redis under a key scoped to one process
// instance, so a restarted process starts with an empty slot.
type RedisStore struct {
	cache *cache.Cache
	key   string
	ttl   time.Duration
}

func NewRedisStore(c *cache.Cache, instanceID uuid.UUID, ttl time.Duration) *RedisStore {
	return &RedisStore{
		cache: c,
		key:   keyPrefix + instanceID.String(),
		ttl:   ttl,
	}
}

// Key returns the Redis key holding the slot.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Set(ctx context.Context, r models.LastResult) error {
	if err := s.cache.Set(ctx, s.key, r, s.ttl); err != nil {
		return fmt.Errorf("store last result: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context) (models.LastResult, error) {
	var r models.LastResult
	err := s.cache.Get(ctx, s.key, &r)
	if errors.Is(err, cache.ErrMiss) {
		return models.LastResult{}, nil
	}
	if err != nil {
		return models.LastResult{}, fmt.Errorf("load last result: %w", err)
	}
	return r, nil
}

// Close drops the slot. Called on graceful shutdown.
func (s *RedisStore) Close(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}
