// Package dto defines data transfer objects for the users feature's HTTP
// transport layer.
package dto

import (
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
)

// ExternalIDItem is the wire shape of one external id. The type field uses
// the enum literals UNKNOWN, GO_CUSTOMER_ID, PAY_ACCOUNT_ID,
// LENDING_PLATFORM_ID; anything else fails deserialization via the
// entity's strict unmarshaller.
type ExternalIDItem struct {
	ID   string                `json:"id" binding:"required"`
	Type entity.ExternalIDType `json:"type" binding:"required"`
}

// CreateUserReq represents the request body for POST /user.
type CreateUserReq struct {
	Data        string           `json:"data"`
	ExternalIDs []ExternalIDItem `json:"externalIds" binding:"required,min=1,dive"`
}

// ToEntity converts the request into a domain user (with no id assigned).
func (r CreateUserReq) ToEntity() *entity.User {
	ids := make([]entity.ExternalID, 0, len(r.ExternalIDs))
	for _, item := range r.ExternalIDs {
		ids = append(ids, entity.ExternalID{Type: item.Type, ID: item.ID})
	}
	return &entity.User{Data: r.Data, ExternalIDs: ids}
}

// UserResponse is the wire shape of a user.
type UserResponse struct {
	ID          string           `json:"id"`
	Data        string           `json:"data"`
	ExternalIDs []ExternalIDItem `json:"externalIds"`
}

// NewUserResponse converts a domain user into its wire shape.
func NewUserResponse(user *entity.User) UserResponse {
	ids := make([]ExternalIDItem, 0, len(user.ExternalIDs))
	for _, ext := range user.ExternalIDs {
		ids = append(ids, ExternalIDItem{ID: ext.ID, Type: ext.Type})
	}
	return UserResponse{ID: user.ID, Data: user.Data, ExternalIDs: ids}
}

// ErrorResponse is the wire shape of an error.
type ErrorResponse struct {
	Error string `json:"error"`
}
