package cartstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// slotTTL bounds how long an abandoned cart survives in Redis
const slotTTL = 30 * 24 * time.Hour

// RedisStorage keeps cart slots in Redis, one key per slot, scoped by a
// prefix (typically the cart session key).
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a Redis-backed slot storage
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// Read returns the slot contents, or (nil, nil) if the slot is absent
func (r *RedisStorage) Read(ctx context.Context, slot string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the slot contents
func (r *RedisStorage) Write(ctx context.Context, slot string, data []byte) error {
	return r.client.Set(ctx, r.key(slot), data, slotTTL).Err()
}

// Delete removes the slot
func (r *RedisStorage) Delete(ctx context.Context, slot string) error {
	return r.client.Del(ctx, r.key(slot)).Err()
}

func (r *RedisStorage) key(slot string) string {
	return r.prefix + ":" + slot
}
