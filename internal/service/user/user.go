package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/apperrors"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/repository"
)

type CreateUserParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string

	// Customer if empty
	Role models.Role
}

type UserService struct {
	hasher  PasswordHasher
	storage repository.Storage

	// Hash compared against when user not found, so the response time is the same
	dummyOnce sync.Once
	dummyHash string
}

func NewService(hasher PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Emails are stored and looked up lower-cased
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create user with empty cart
// Returns apperrors.ErrEmailInUse if email is taken
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (models.User, error) {
	var user models.User

	if params.Password == "" {
		return user, errors.New("can't use empty password")
	}
	if params.Role == "" {
		params.Role = models.RoleCustomer
	}
	if !params.Role.Valid() {
		return user, fmt.Errorf("unknown role %q", params.Role)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		user, err = tx.User().CreateUser(ctx, repository.CreateUserParams{
			Email:        NormalizeEmail(params.Email),
			PasswordHash: hash,
			FirstName:    params.FirstName,
			LastName:     params.LastName,
			Role:         params.Role,
		})
		if err != nil {
			return err
		}

		_, err = tx.Cart().CreateCart(ctx, user.ID)
		return err
	})

	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return models.User{}, fmt.Errorf("can't create user. Err: %w", apperrors.ErrEmailInUse)
	case err != nil:
		return models.User{}, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Create user if not exists yet
// Returns existed user as is otherwise (password and role not touched)
func (s *UserService) EnsureUser(ctx context.Context, params CreateUserParams) (user models.User, created bool, err error) {
	user, err = s.GetUserByEmail(ctx, params.Email)
	switch {
	case err == nil:
		return user, false, nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return user, false, err
	}

	user, err = s.CreateUser(ctx, params)
	if errors.Is(err, apperrors.ErrEmailInUse) {
		// Created concurrently
		user, err = s.GetUserByEmail(ctx, params.Email)
		return user, false, err
	}

	return user, err == nil, err
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.storage.User().GetUserByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// Check email and password
// Returns the same apperrors.ErrInvalidCredentials either user not found or password mismatch
func (s *UserService) CheckCredentials(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummy(), password)
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	err = s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}
