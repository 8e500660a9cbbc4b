package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// userRedis implements usecase.UserRepository on Redis, storing each user
// as a JSON document under a namespaced key.
type userRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.UserRepository = (*userRedis)(nil)

// NewUserRedis creates a new userRedis instance. If prefix is empty it
// defaults to "user".
func NewUserRedis(client *redis.Client, prefix string) *userRedis {
	if prefix == "" {
		prefix = "user"
	}
	return &userRedis{client: client, prefix: prefix}
}

// storeKey returns the Redis key for a user id.
func (r *userRedis) storeKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Create persists a new user record. Ids are caller-generated UUIDs, so a
// collision means id reuse; SET NX turns that into an error instead of an
// overwrite.
func (r *userRedis) Create(ctx context.Context, user *entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", user.ID, err)
	}
	ok, err := r.client.SetNX(ctx, r.storeKey(user.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("setnx user %s: %w", user.ID, err)
	}
	if !ok {
		return fmt.Errorf("user id %s already exists", user.ID)
	}
	return nil
}

// FindByID retrieves a user record by id.
func (r *userRedis) FindByID(ctx context.Context, id string) (*entity.User, error) {
	data, err := r.client.Get(ctx, r.storeKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user %s: %w", id, err)
	}
	return &user, nil
}
