package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
)

const (
	// readBackAttempts bounds the re-read after a successful create. The
	// re-read is a consistency check, not an optimization: if the store
	// cannot serve the record back, the call fails rather than returning
	// a half-built user.
	readBackAttempts = 3
)

// ExternalIDRepository abstracts the uniqueness index table, keyed by the
// canonical external id key. Following Go convention, the interface is
// defined by the consumer (usecase), not the provider (adapters).
type ExternalIDRepository interface {
	// CreateIfAbsent persists an index record only if no record exists
	// for key. It must be atomic as seen by the store: of concurrent
	// callers racing on the same key exactly one succeeds, the rest get
	// ErrExternalIDTaken.
	CreateIfAbsent(ctx context.Context, key string, ownerID string) error

	// Delete removes the record at key. Deleting an absent key is not an
	// error, so compensation retries are safe.
	Delete(ctx context.Context, key string) error

	// Get returns the owning user id recorded at key, or
	// ErrExternalIDNotFound.
	Get(ctx context.Context, key string) (string, error)
}

// UserRepository abstracts the user record table, keyed by user id.
type UserRepository interface {
	// Create persists a new user record. The caller guarantees the id is
	// freshly generated and not reused.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user record, or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// userUsecase sequences writes across the two stores. It holds no mutable
// state between calls; all mutual exclusion comes from the index store's
// create-only primitive.
type userUsecase struct {
	users       UserRepository
	externalIDs ExternalIDRepository

	// readBackDelay separates re-read attempts after a create. Tests set
	// it to zero.
	readBackDelay time.Duration
}

// NewUserUsecase creates a new instance of userUsecase.
func NewUserUsecase(users UserRepository, externalIDs ExternalIDRepository) *userUsecase {
	return &userUsecase{
		users:         users,
		externalIDs:   externalIDs,
		readBackDelay: 25 * time.Millisecond,
	}
}

// CreateUser creates a user together with the uniqueness index records for
// all of its external ids. The two stores have no cross-record
// transactions, so the write runs as a saga: reserve every index key in
// request order, then write the user record, compensating by deleting the
// reserved prefix on any failure. Returns the user re-read from the store
// as the canonical result.
func (u *userUsecase) CreateUser(ctx context.Context, req *entity.User) (*entity.User, error) {
	if req == nil || len(req.ExternalIDs) == 0 {
		return nil, domain.ErrNoExternalIDs
	}
	if err := validateExternalIDs(req.ExternalIDs); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	// Reservations are strictly sequential: compensation needs the exact
	// prefix of keys reserved before the failure.
	reserved := make([]entity.ExternalID, 0, len(req.ExternalIDs))
	for _, ext := range req.ExternalIDs {
		if err := u.externalIDs.CreateIfAbsent(ctx, ext.Key(), id); err != nil {
			u.releaseReserved(ctx, reserved)
			if errors.Is(err, ErrExternalIDTaken) {
				return nil, fmt.Errorf("%w: %s", domain.ErrExternalIDConflict, ext.Key())
			}
			return nil, fmt.Errorf("reserve external id %s: %w", ext.Key(), err)
		}
		reserved = append(reserved, ext)
	}

	user := &entity.User{
		ID:          id,
		Data:        req.Data,
		ExternalIDs: req.ExternalIDs,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// The index records now point at a user that does not exist;
		// delete them before surfacing the failure.
		u.releaseReserved(ctx, reserved)
		return nil, fmt.Errorf("create user %s: %w", id, err)
	}

	return u.readBack(ctx, id)
}

// validateExternalIDs rejects unknown types, empty values and
// self-conflicts before any store write happens.
func validateExternalIDs(ids []entity.ExternalID) error {
	seen := make(map[string]struct{}, len(ids))
	for _, ext := range ids {
		if !ext.Type.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrUnknownExternalIDType, ext.Type)
		}
		if ext.ID == "" {
			return fmt.Errorf("%w: empty value for type %s", domain.ErrMalformedKey, ext.Type)
		}
		key := ext.Key()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateExternalID, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// releaseReserved deletes every index record reserved so far. It runs on a
// context detached from caller cancellation: a cancelled saga must still
// clean up, or it leaks index records pointing at a user that was never
// written. Delete failures are logged and never short-circuit the
// remaining deletes; silent orphaned index records are the exact defect
// the saga exists to prevent.
func (u *userUsecase) releaseReserved(ctx context.Context, reserved []entity.ExternalID) {
	ctx = context.WithoutCancel(ctx)
	for _, ext := range reserved {
		if err := u.externalIDs.Delete(ctx, ext.Key()); err != nil {
			slog.Error("failed to release reserved external id",
				"key", ext.Key(), "error", err)
		}
	}
}

// readBack fetches the just-created user as the canonical result, guarding
// against any normalization the store layer performs. A store without
// read-after-write consistency may briefly miss the record, so NotFound
// here is retried a few times before being surfaced as a server error.
func (u *userUsecase) readBack(ctx context.Context, id string) (*entity.User, error) {
	var lastErr error
	for attempt := 0; attempt < readBackAttempts; attempt++ {
		if attempt > 0 && u.readBackDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("read back user %s: %w", id, ctx.Err())
			case <-time.After(u.readBackDelay):
			}
		}
		user, err := u.users.FindByID(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("read back user %s: %w", id, err)
		}
		lastErr = err
	}
	// Deliberately not wrapped as ErrUserNotFound: the record was just
	// written, so this is a store problem, not a 404.
	return nil, fmt.Errorf("user %s not readable after create: %v", id, lastErr)
}

// FindByExternalID resolves an external id to its owning user: one index
// read, then one user read.
func (u *userUsecase) FindByExternalID(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownExternalIDType, typ)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty value for type %s", domain.ErrMalformedKey, typ)
	}

	key := entity.ExternalID{Type: typ, ID: id}.Key()
	ownerID, err := u.externalIDs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrExternalIDNotFound) {
			return nil, fmt.Errorf("external id %s: %w", key, err)
		}
		return nil, fmt.Errorf("look up external id %s: %w", key, err)
	}

	user, err := u.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// An index record without its user is a consistency
			// violation, not a missing external id.
			slog.Error("index record points at missing user",
				"key", key, "owner_id", ownerID)
			return nil, fmt.Errorf("%w: key %s owner %s", ErrIndexInconsistent, key, ownerID)
		}
		return nil, fmt.Errorf("load user %s for external id %s: %w", ownerID, key, err)
	}
	return user, nil
}

// FindByID retrieves a user by its primary id.
func (u *userUsecase) FindByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	return user, nil
}
