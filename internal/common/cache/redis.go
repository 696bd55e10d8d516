package cache

import (
	"context"

	"edudata-explorer/internal/common/database"
)

// RedisStore shares the memo between processes. Keys are written without
// expiry, matching the in-memory store.
type RedisStore struct {
	client *database.RedisClient
	prefix string
}

func NewRedisStore(client *database.RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return r.client.GetBytes(ctx, r.prefix+key)
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0)
}
