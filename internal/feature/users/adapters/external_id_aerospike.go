package adapters

import (
	"context"
	"fmt"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

const externalIDSet = "externalIds"

// externalIDAerospike implements usecase.ExternalIDRepository on an
// Aerospike set. The create-only semantics come from
// RecordExistsAction.CREATE_ONLY, a single-key linearizable check-and-set
// on the server.
type externalIDAerospike struct {
	client    *aero.Client
	namespace string
}

var _ usecase.ExternalIDRepository = (*externalIDAerospike)(nil)

// NewExternalIDAerospike creates a new externalIDAerospike instance.
func NewExternalIDAerospike(client *aero.Client, namespace string) *externalIDAerospike {
	return &externalIDAerospike{client: client, namespace: namespace}
}

func (r *externalIDAerospike) recordKey(key string) (*aero.Key, error) {
	k, err := aero.NewKey(r.namespace, externalIDSet, key)
	if err != nil {
		return nil, fmt.Errorf("build key %s: %w", key, err)
	}
	return k, nil
}

// CreateIfAbsent writes the index record with a create-only policy,
// translating KEY_EXISTS_ERROR into usecase.ErrExternalIDTaken.
func (r *externalIDAerospike) CreateIfAbsent(ctx context.Context, key string, ownerID string) error {
	k, err := r.recordKey(key)
	if err != nil {
		return err
	}
	wp := aero.NewWritePolicy(0, aero.TTLDontExpire)
	wp.RecordExistsAction = aero.CREATE_ONLY
	wp.SendKey = true
	if aerr := r.client.Put(wp, k, aero.BinMap{"id": ownerID}); aerr != nil {
		if aerr.Matches(types.KEY_EXISTS_ERROR) {
			return usecase.ErrExternalIDTaken
		}
		return fmt.Errorf("put external id %s: %w", key, aerr)
	}
	return nil
}

// Delete removes the index record. Aerospike reports whether the record
// existed; an absent record is not an error.
func (r *externalIDAerospike) Delete(ctx context.Context, key string) error {
	k, err := r.recordKey(key)
	if err != nil {
		return err
	}
	if _, aerr := r.client.Delete(nil, k); aerr != nil {
		return fmt.Errorf("delete external id %s: %w", key, aerr)
	}
	return nil
}

// Get returns the owning user id recorded at key.
func (r *externalIDAerospike) Get(ctx context.Context, key string) (string, error) {
	k, err := r.recordKey(key)
	if err != nil {
		return "", err
	}
	rec, aerr := r.client.Get(nil, k, "id")
	if aerr != nil {
		if aerr.Matches(types.KEY_NOT_FOUND_ERROR) {
			return "", usecase.ErrExternalIDNotFound
		}
		return "", fmt.Errorf("get external id %s: %w", key, aerr)
	}
	ownerID, ok := rec.Bins["id"].(string)
	if !ok || ownerID == "" {
		return "", fmt.Errorf("external id %s: owner bin missing or not a string", key)
	}
	return ownerID, nil
}
