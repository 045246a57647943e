package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis persists snapshot blobs in a Redis string key.
type Redis struct {
	client *redis.Client
}

// NewRedis verifies connectivity and returns the gateway.
func NewRedis(ctx context.Context, client *redis.Client) (*Redis, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// Save overwrites the blob under key. No TTL; the snapshot lives until the
// next write replaces it.
func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("store: redis set %s: %w", key, err)
	}
	return nil
}

// Load fetches the blob under key.
func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Copy duplicates the blob under src to dst, used by the backup job. Absence
// of src is not an error.
func (r *Redis) Copy(ctx context.Context, src, dst string) error {
	data, ok, err := r.Load(ctx, src)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return r.Save(ctx, dst, data)
}
