package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/models"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         models.Role
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Cart repository interface
// Only cart creation is used by the user registration, cart content is managed elsewhere
type CartRepo interface {
	CreateCart(ctx context.Context, userID uuid.UUID) (models.Cart, error)
}

// RefreshToken repository interface
// Every delete is idempotent: deleting not existed row is not an error
type RefreshTokenRepo interface {
	// Create token in repository
	Create(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Find token by exact value
	// If not found must return apperrors.ErrRefreshTokenNotFound
	FindByToken(ctx context.Context, token string) (models.RefreshToken, error)

	// Delete token by id
	// Reports whether the row was deleted by this call. Concurrent callers with the same id
	// must never both get true
	Delete(ctx context.Context, tokenID uuid.UUID) (deleted bool, err error)

	// Delete token only if it belongs to the user
	DeleteByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (int64, error)

	// Delete all user tokens
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete at most limit tokens expired before the moment
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int64, error)
}

type Storage interface {
	User() UserRepo
	Cart() CartRepo
	Refresh() RefreshTokenRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
