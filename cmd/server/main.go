package main

import (
	"log"
	"os"

	aerov7 "github.com/aerospike/aerospike-client-go/v7"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kopparam/aerospike-bucketing/internal/app/di"
	"github.com/kopparam/aerospike-bucketing/internal/app/router"
	usershandler "github.com/kopparam/aerospike-bucketing/internal/feature/users/transport/handler"
	usersusecase "github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
	platformaero "github.com/kopparam/aerospike-bucketing/internal/platform/aerospike"
	infradb "github.com/kopparam/aerospike-bucketing/internal/platform/db"
	jwtmw "github.com/kopparam/aerospike-bucketing/internal/platform/jwt"
	infraredis "github.com/kopparam/aerospike-bucketing/internal/platform/redis"
)

func main() {
	// Aerospike is the primary store
	var asc *aerov7.Client
	if tmp, err := platformaero.NewAerospikeClient(); err != nil {
		log.Println("[WARN] Aerospike unavailable. Falling back to alternate store.")
	} else {
		asc = tmp
		defer asc.Close()
	}

	// Redis fallback
	var rdb *redisv9.Client
	if asc == nil {
		if tmp, err := infraredis.NewRedisClient(); err != nil {
			log.Println("[WARN] Redis unavailable. Falling back to relational store.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Relational fallback, only opened when nothing else is reachable
	var db *gorm.DB
	if asc == nil && rdb == nil {
		db = infradb.OpenDB()
	}

	// Repository
	userRepo, externalIDRepo := di.NewUserRepositories(asc, rdb, db)

	// Usecase
	usersUC := usersusecase.NewUserUsecase(userRepo, externalIDRepo)

	// Handler
	usersH := usershandler.NewUserHandler(usersUC)

	// The /user routes are guarded only when a shared secret is configured
	requireAuth := os.Getenv(jwtmw.EnvKeyJWTSecret) != ""
	if !requireAuth {
		log.Println("[WARN] JWT_SECRET is not set. /user endpoints are unauthenticated.")
	}

	r := router.NewRouter(usersH, requireAuth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
