// Package handler provides the HTTP handlers for the users feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/transport/http/dto"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// UserUsecase defines the bucketing operations the handler depends on.
// Following Go convention, the interface is defined by the consumer
// (handler), not the provider (usecase).
type UserUsecase interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	FindByExternalID(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// UserHandler handles HTTP requests for user bucketing operations.
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles POST /user.
// - binds the request JSON, rejecting unknown external id type literals
// - delegates to the create-user saga
// - 201 with the canonical user on success
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), req.ToEntity())
	if err != nil {
		h.writeError(c, err)
		return
	}
	slog.Info("user created", "user_id", user.ID, "external_ids", len(user.ExternalIDs))
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// GetByQuery handles GET /user?goCustomerId=…|payAccountId=…, the legacy
// query-parameter lookup. Exactly one of the two parameters is used;
// goCustomerId wins when both are present.
func (h *UserHandler) GetByQuery(c *gin.Context) {
	var typ entity.ExternalIDType
	var id string
	switch {
	case c.Query("goCustomerId") != "":
		typ, id = entity.TypeGoCustomerID, c.Query("goCustomerId")
	case c.Query("payAccountId") != "":
		typ, id = entity.TypePayAccountID, c.Query("payAccountId")
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "goCustomerId or payAccountId is required"})
		return
	}
	h.findByExternalID(c, typ, id)
}

// GetByExternalID handles GET /user/externalId/:externalIdType/:externalId.
func (h *UserHandler) GetByExternalID(c *gin.Context) {
	typ := entity.ExternalIDType(c.Param("externalIdType"))
	h.findByExternalID(c, typ, c.Param("externalId"))
}

func (h *UserHandler) findByExternalID(c *gin.Context, typ entity.ExternalIDType, id string) {
	user, err := h.users.FindByExternalID(c.Request.Context(), typ, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// GetByID handles GET /user/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// writeError maps engine errors onto HTTP status codes: caller faults to
// 400, absent entities to 404, everything else (store failures, index
// inconsistencies) to 500 with a generic body.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoExternalIDs),
		errors.Is(err, domain.ErrDuplicateExternalID),
		errors.Is(err, domain.ErrExternalIDConflict),
		errors.Is(err, domain.ErrUnknownExternalIDType),
		errors.Is(err, domain.ErrMalformedKey):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrExternalIDNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("user request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "server error"})
	}
}
