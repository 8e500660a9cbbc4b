package di

import (
	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/adapters"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
	platformaero "github.com/kopparam/aerospike-bucketing/internal/platform/aerospike"
)

// NewUserRepositories selects the storage backend for the users feature.
// Aerospike is the primary backend. If no Aerospike cluster is reachable
// it falls back to Redis, and failing that to the relational store. Both
// stores of a pair always come from the same backend: the saga's
// consistency contract spans the two tables.
func NewUserRepositories(asc *aero.Client, rdb *redis.Client, db *gorm.DB) (usecase.UserRepository, usecase.ExternalIDRepository) {
	if asc != nil {
		ns := platformaero.Namespace()
		return adapters.NewUserAerospike(asc, ns), adapters.NewExternalIDAerospike(asc, ns)
	}
	if rdb != nil {
		return adapters.NewUserRedis(rdb, "user"), adapters.NewExternalIDRedis(rdb, "externalIds")
	}
	return adapters.NewUserGorm(db), adapters.NewExternalIDGorm(db)
}
