package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "elevate:attempts:"

// RedisAttemptRepository counts failed attempts in fixed windows.
type RedisAttemptRepository struct {
	client *redis.Client
}

// NewRedisAttemptRepository constructs the repository.
func NewRedisAttemptRepository(client *redis.Client) *RedisAttemptRepository {
	return &RedisAttemptRepository{client: client}
}

// Count returns the failures recorded in the current window.
func (r *RedisAttemptRepository) Count(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, attemptKeyPrefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get attempts: %w", err)
	}
	return n, nil
}

// Increment records a failure; the window starts with the first failure.
func (r *RedisAttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, attemptKeyPrefix+key)
	pipe.ExpireNX(ctx, attemptKeyPrefix+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr attempts: %w", err)
	}
	return incr.Val(), nil
}

// Reset clears the counter after a success.
func (r *RedisAttemptRepository) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, attemptKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis reset attempts: %w", err)
	}
	return nil
}

// MemoryAttemptRepository counts failures in process memory.
type MemoryAttemptRepository struct {
	mu      sync.Mutex
	windows map[string]attemptWindow
	now     func() time.Time
}

type attemptWindow struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryAttemptRepository constructs the repository.
func NewMemoryAttemptRepository() *MemoryAttemptRepository {
	return &MemoryAttemptRepository{windows: make(map[string]attemptWindow), now: time.Now}
}

// Count returns the failures recorded in the current window.
func (r *MemoryAttemptRepository) Count(ctx context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[key]
	if !ok || r.now().After(w.expiresAt) {
		return 0, nil
	}
	return w.count, nil
}

// Increment records a failure.
func (r *MemoryAttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	w, ok := r.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = attemptWindow{expiresAt: now.Add(window)}
	}
	w.count++
	r.windows[key] = w
	return w.count, nil
}

// Reset clears the counter.
func (r *MemoryAttemptRepository) Reset(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, key)
	return nil
}
