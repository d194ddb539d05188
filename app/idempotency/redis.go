// Package idempotency guards mutating session operations against duplicate
// concurrent invocations using Redis SET NX.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statusInProgress = "IN_PROGRESS"
	statusCompleted  = "COMPLETED"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// InProgressTTL bounds how long an acquired key can block retries if
	// the process dies mid-operation.
	InProgressTTL time.Duration
	CompletedTTL  time.Duration
}

type RedisStore struct {
	client        *redis.Client
	inProgressTTL time.Duration
	completedTTL  time.Duration
}

func NewRedisStore(cfg Config) *RedisStore {
	inProgressTTL := cfg.InProgressTTL
	if inProgressTTL <= 0 {
		inProgressTTL = 10 * time.Second
	}
	completedTTL := cfg.CompletedTTL
	if completedTTL <= 0 {
		completedTTL = 24 * time.Hour
	}

	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		inProgressTTL: inProgressTTL,
		completedTTL:  completedTTL,
	}
}

// Acquire atomically claims the key. It returns false when the operation is
// already completed or currently in progress elsewhere.
func (s *RedisStore) Acquire(ctx context.Context, key string) (bool, error) {
	redisKey := storeKey(key)

	status, err := s.client.Get(ctx, redisKey).Result()
	if err == nil && status == statusCompleted {
		return false, nil
	}
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("redis GET error: %w", err)
	}

	set, err := s.client.SetNX(ctx, redisKey, statusInProgress, s.inProgressTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX error: %w", err)
	}

	return set, nil
}

// Complete marks the operation as done so later duplicates short-circuit.
func (s *RedisStore) Complete(ctx context.Context, key string) error {
	return s.client.Set(ctx, storeKey(key), statusCompleted, s.completedTTL).Err()
}

// Release drops an in-progress claim after a failed operation so the caller
// can retry before the TTL expires.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, storeKey(key)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func storeKey(key string) string {
	return "op:" + key
}
