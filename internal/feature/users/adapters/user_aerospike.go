package adapters

import (
	"context"
	"fmt"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

const userSet = "user"

// userAerospike implements usecase.UserRepository on an Aerospike set.
// External ids are embedded in the user record as a list of maps.
type userAerospike struct {
	client    *aero.Client
	namespace string
}

var _ usecase.UserRepository = (*userAerospike)(nil)

// NewUserAerospike creates a new userAerospike instance.
func NewUserAerospike(client *aero.Client, namespace string) *userAerospike {
	return &userAerospike{client: client, namespace: namespace}
}

func (r *userAerospike) recordKey(id string) (*aero.Key, error) {
	k, err := aero.NewKey(r.namespace, userSet, id)
	if err != nil {
		return nil, fmt.Errorf("build key for user %s: %w", id, err)
	}
	return k, nil
}

// Create persists a new user record with a create-only policy so that an
// id collision never overwrites an existing user.
func (r *userAerospike) Create(ctx context.Context, user *entity.User) error {
	k, err := r.recordKey(user.ID)
	if err != nil {
		return err
	}
	externalIDs := make([]interface{}, 0, len(user.ExternalIDs))
	for _, ext := range user.ExternalIDs {
		externalIDs = append(externalIDs, map[string]interface{}{
			"externalId": ext.ID,
			"type":       string(ext.Type),
		})
	}
	wp := aero.NewWritePolicy(0, aero.TTLDontExpire)
	wp.RecordExistsAction = aero.CREATE_ONLY
	wp.SendKey = true
	bins := aero.BinMap{
		"id":          user.ID,
		"data":        user.Data,
		"externalIds": externalIDs,
	}
	if aerr := r.client.Put(wp, k, bins); aerr != nil {
		if aerr.Matches(types.KEY_EXISTS_ERROR) {
			return fmt.Errorf("user id %s already exists", user.ID)
		}
		return fmt.Errorf("put user %s: %w", user.ID, aerr)
	}
	return nil
}

// FindByID retrieves a user record by id.
func (r *userAerospike) FindByID(ctx context.Context, id string) (*entity.User, error) {
	k, err := r.recordKey(id)
	if err != nil {
		return nil, err
	}
	rec, aerr := r.client.Get(nil, k)
	if aerr != nil {
		if aerr.Matches(types.KEY_NOT_FOUND_ERROR) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, aerr)
	}
	return decodeUserBins(id, rec.Bins)
}

// decodeUserBins rebuilds a user entity from stored bins. Stored records
// were written by this adapter, so a shape mismatch is a store problem.
func decodeUserBins(id string, bins aero.BinMap) (*entity.User, error) {
	user := &entity.User{ID: id}
	if data, ok := bins["data"].(string); ok {
		user.Data = data
	}
	rawList, ok := bins["externalIds"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("user %s: externalIds bin missing or not a list", id)
	}
	for _, raw := range rawList {
		fields, ok := raw.(map[interface{}]interface{})
		if !ok {
			return nil, fmt.Errorf("user %s: external id entry is not a map", id)
		}
		extID, _ := fields["externalId"].(string)
		typ, _ := fields["type"].(string)
		user.ExternalIDs = append(user.ExternalIDs, entity.ExternalID{
			Type: entity.ExternalIDType(typ),
			ID:   extID,
		})
	}
	return user, nil
}
