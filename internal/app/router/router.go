package router

import (
	"github.com/gin-gonic/gin"

	usershandler "github.com/kopparam/aerospike-bucketing/internal/feature/users/transport/handler"
	platformhandler "github.com/kopparam/aerospike-bucketing/internal/platform/http/handler"
	jwtmw "github.com/kopparam/aerospike-bucketing/internal/platform/jwt"
)

// NewRouter assembles the service routes. When requireAuth is set, the
// /user group is guarded by the bearer-token middleware; the health
// endpoint is always public.
func NewRouter(users *usershandler.UserHandler, requireAuth bool) *gin.Engine {
	r := gin.Default()

	// liveness probe
	r.GET("/healthz", platformhandler.Health)

	g := r.Group("/user")
	if requireAuth {
		g.Use(jwtmw.AuthRequired())
	}
	{
		// create a user with its external ids
		g.POST("", users.Create)
		// legacy query-parameter lookup
		g.GET("", users.GetByQuery)
		// typed external id lookup
		g.GET("/externalId/:externalIdType/:externalId", users.GetByExternalID)
		// direct lookup by user id
		g.GET("/:id", users.GetByID)
	}

	return r
}
