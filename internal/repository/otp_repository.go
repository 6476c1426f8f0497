package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when a verification handle is unknown or expired.
var ErrOTPNotFound = errors.New("otp not found")

// OTPEntry is a pending one-time code.
type OTPEntry struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

const otpKeyPrefix = "otp:"

// RedisOTPRepository stores one-time codes in Redis with a TTL.
type RedisOTPRepository struct {
	client *redis.Client
}

// NewRedisOTPRepository constructs the repository.
func NewRedisOTPRepository(client *redis.Client) *RedisOTPRepository {
	return &RedisOTPRepository{client: client}
}

// Save stores the entry under the handle.
func (r *RedisOTPRepository) Save(ctx context.Context, handle string, entry OTPEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	if err := r.client.Set(ctx, otpKeyPrefix+handle, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set otp: %w", err)
	}
	return nil
}

// Get loads the entry for the handle.
func (r *RedisOTPRepository) Get(ctx context.Context, handle string) (*OTPEntry, error) {
	raw, err := r.client.Get(ctx, otpKeyPrefix+handle).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("redis get otp: %w", err)
	}
	var entry OTPEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	return &entry, nil
}

// Delete removes the entry, making the code single use.
func (r *RedisOTPRepository) Delete(ctx context.Context, handle string) error {
	if err := r.client.Del(ctx, otpKeyPrefix+handle).Err(); err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	return nil
}

// MemoryOTPRepository keeps one-time codes in process memory.
type MemoryOTPRepository struct {
	mu      sync.Mutex
	entries map[string]memoryOTP
	now     func() time.Time
}

type memoryOTP struct {
	entry     OTPEntry
	expiresAt time.Time
}

// NewMemoryOTPRepository constructs the repository.
func NewMemoryOTPRepository() *MemoryOTPRepository {
	return &MemoryOTPRepository{entries: make(map[string]memoryOTP), now: time.Now}
}

// Save stores the entry under the handle.
func (r *MemoryOTPRepository) Save(ctx context.Context, handle string, entry OTPEntry, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[handle] = memoryOTP{entry: entry, expiresAt: r.now().Add(ttl)}
	return nil
}

// Get loads the entry for the handle.
func (r *MemoryOTPRepository) Get(ctx context.Context, handle string) (*OTPEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.entries[handle]
	if !ok {
		return nil, ErrOTPNotFound
	}
	if r.now().After(stored.expiresAt) {
		delete(r.entries, handle)
		return nil, ErrOTPNotFound
	}
	entry := stored.entry
	return &entry, nil
}

// Delete removes the entry.
func (r *MemoryOTPRepository) Delete(ctx context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, handle)
	return nil
}
