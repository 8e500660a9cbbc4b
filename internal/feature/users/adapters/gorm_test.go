package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// TranslateError mirrors the production configuration so duplicate keys
// come back as gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&UserModel{}, &ExternalIDModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func TestExternalIDGorm_CreateIfAbsent(t *testing.T) {
	t.Run("success: free key is reserved", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewExternalIDGorm(db)

		err := repo.CreateIfAbsent(context.Background(), "GO_CUSTOMER_ID:cust-1", "user-1")

		require.NoError(t, err)
		ownerID, err := repo.Get(context.Background(), "GO_CUSTOMER_ID:cust-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", ownerID)
	})

	t.Run("failure: occupied key reports taken", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewExternalIDGorm(db)

		require.NoError(t, repo.CreateIfAbsent(context.Background(), "GO_CUSTOMER_ID:cust-1", "user-1"))
		err := repo.CreateIfAbsent(context.Background(), "GO_CUSTOMER_ID:cust-1", "user-2")

		assert.ErrorIs(t, err, usecase.ErrExternalIDTaken)

		ownerID, getErr := repo.Get(context.Background(), "GO_CUSTOMER_ID:cust-1")
		require.NoError(t, getErr)
		assert.Equal(t, "user-1", ownerID, "losing insert must not change the owner")
	})
}

func TestExternalIDGorm_Delete(t *testing.T) {
	t.Run("removes the record and is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewExternalIDGorm(db)

		require.NoError(t, repo.CreateIfAbsent(context.Background(), "PAY_ACCOUNT_ID:p1", "user-1"))

		assert.NoError(t, repo.Delete(context.Background(), "PAY_ACCOUNT_ID:p1"))
		assert.NoError(t, repo.Delete(context.Background(), "PAY_ACCOUNT_ID:p1"))

		_, err := repo.Get(context.Background(), "PAY_ACCOUNT_ID:p1")
		assert.ErrorIs(t, err, usecase.ErrExternalIDNotFound)
	})

	t.Run("deleting an absent key is not an error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewExternalIDGorm(db)

		assert.NoError(t, repo.Delete(context.Background(), "PAY_ACCOUNT_ID:never-existed"))
	})
}

func TestExternalIDGorm_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExternalIDGorm(db)

	_, err := repo.Get(context.Background(), "LENDING_PLATFORM_ID:unknown")

	assert.ErrorIs(t, err, usecase.ErrExternalIDNotFound)
}

func TestUserGorm_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	user := testUser("user-1")
	require.NoError(t, repo.Create(context.Background(), user))

	found, err := repo.FindByID(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, user, found, "record round-trips unchanged, embedded external ids included")
}

func TestUserGorm_Create_ExistingID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	require.NoError(t, repo.Create(context.Background(), testUser("user-1")))
	err := repo.Create(context.Background(), testUser("user-1"))

	assert.Error(t, err)
}

func TestUserGorm_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	_, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
