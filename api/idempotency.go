package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "task-id"

// RedisRecorder stores idempotency keys and the task id each key produced in
// Redis, so replayed create requests resolve to the original task instead of
// allocating a new one. Entries expire after the configured TTL.
type RedisRecorder struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecorder creates a recorder using the provided Redis client and TTL.
func NewRedisRecorder(client *redis.Client, ttl time.Duration) *RedisRecorder {
	return &RedisRecorder{client: client, ttl: ttl}
}

func (r *RedisRecorder) key(userID, key string) string {
	return fmt.Sprintf("%s:%s:%s", userID, idempotencyKeyPrefix, key)
}

// Lookup returns the task id previously recorded for the key, if any.
func (r *RedisRecorder) Lookup(ctx context.Context, userID, key string) (uint64, bool, error) {
	id, err := r.client.Get(ctx, r.key(userID, key)).Uint64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Record remembers the id assigned to the key. SetNX keeps the first recorded
// id when two requests race on the same key.
func (r *RedisRecorder) Record(ctx context.Context, userID, key string, id uint64) error {
	return r.client.SetNX(ctx, r.key(userID, key), id, r.ttl).Err()
}
