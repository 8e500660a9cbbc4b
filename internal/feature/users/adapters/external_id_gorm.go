package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// externalIDGorm implements usecase.ExternalIDRepository on a relational
// database. The primary-key constraint on the canonical key column gives
// the atomic check-and-set: a concurrent insert on the same key fails with
// a duplicate-key error. Requires gorm.Config{TranslateError: true}.
type externalIDGorm struct {
	db *gorm.DB
}

var _ usecase.ExternalIDRepository = (*externalIDGorm)(nil)

// NewExternalIDGorm creates a new externalIDGorm instance.
func NewExternalIDGorm(db *gorm.DB) *externalIDGorm {
	return &externalIDGorm{db: db}
}

// CreateIfAbsent inserts the index record, translating a duplicate-key
// violation into usecase.ErrExternalIDTaken.
func (r *externalIDGorm) CreateIfAbsent(ctx context.Context, key string, ownerID string) error {
	rec := ExternalIDModel{Key: key, OwnerID: ownerID}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrExternalIDTaken
		}
		return fmt.Errorf("insert external id %s: %w", key, err)
	}
	return nil
}

// Delete removes the index record; deleting an absent key is not an error.
func (r *externalIDGorm) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&ExternalIDModel{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete external id %s: %w", key, err)
	}
	return nil
}

// Get returns the owning user id recorded at key.
func (r *externalIDGorm) Get(ctx context.Context, key string) (string, error) {
	var rec ExternalIDModel
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", usecase.ErrExternalIDNotFound
		}
		return "", fmt.Errorf("select external id %s: %w", key, err)
	}
	return rec.OwnerID, nil
}
