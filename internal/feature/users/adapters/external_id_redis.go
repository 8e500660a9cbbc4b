// Package adapters provides the repository implementations for the users
// feature.
package adapters

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// externalIDRedis implements usecase.ExternalIDRepository on Redis. The
// create-only semantics come from SET NX, which is atomic per key on the
// server: of concurrent reservations for one key exactly one wins.
type externalIDRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.ExternalIDRepository = (*externalIDRedis)(nil)

// NewExternalIDRedis creates a new externalIDRedis instance. If prefix is
// empty it defaults to "externalIds".
func NewExternalIDRedis(client *redis.Client, prefix string) *externalIDRedis {
	if prefix == "" {
		prefix = "externalIds"
	}
	return &externalIDRedis{client: client, prefix: prefix}
}

// storeKey returns the Redis key for a canonical external id key.
func (r *externalIDRedis) storeKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// CreateIfAbsent records ownerID at key only if the key is free.
func (r *externalIDRedis) CreateIfAbsent(ctx context.Context, key string, ownerID string) error {
	ok, err := r.client.SetNX(ctx, r.storeKey(key), ownerID, 0).Result()
	if err != nil {
		return fmt.Errorf("setnx %s: %w", key, err)
	}
	if !ok {
		return usecase.ErrExternalIDTaken
	}
	return nil
}

// Delete removes the index record. DEL on an absent key is a no-op, which
// keeps compensation retries safe.
func (r *externalIDRedis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.storeKey(key)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Get returns the owning user id recorded at key.
func (r *externalIDRedis) Get(ctx context.Context, key string) (string, error) {
	ownerID, err := r.client.Get(ctx, r.storeKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", usecase.ErrExternalIDNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return ownerID, nil
}
