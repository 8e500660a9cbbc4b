package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// userGorm implements usecase.UserRepository on a relational database.
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new userGorm instance.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create persists a new user row. The id is a caller-generated UUID; a
// duplicate means id reuse and is surfaced as an error.
func (r *userGorm) Create(ctx context.Context, user *entity.User) error {
	ids, err := json.Marshal(user.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids for user %s: %w", user.ID, err)
	}
	row := UserModel{ID: user.ID, Data: user.Data, ExternalIDs: string(ids)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user id %s already exists", user.ID)
		}
		return fmt.Errorf("insert user %s: %w", user.ID, err)
	}
	return nil
}

// FindByID retrieves a user row by id.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var row UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	var ids []entity.ExternalID
	if err := json.Unmarshal([]byte(row.ExternalIDs), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal external ids for user %s: %w", id, err)
	}
	return &entity.User{ID: row.ID, Data: row.Data, ExternalIDs: ids}, nil
}
