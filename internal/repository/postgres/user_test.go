package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/backoffice/internal/apperrors"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/repository"
	"github.com/nkiryanov/backoffice/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	params := repository.CreateUserParams{
		Email:        "alice@example.com",
		PasswordHash: "hashedpassword123",
		FirstName:    "Alice",
		LastName:     "Liddell",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), params)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.PasswordHash)
			assert.Equal(t, "Alice", user.FirstName)
			assert.Equal(t, "Liddell", user.LastName)
			assert.Equal(t, models.RoleCustomer, user.Role, "customer role should be default")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user with role", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			adminParams := params
			adminParams.Role = models.RoleAdmin

			user, err := r.CreateUser(t.Context(), adminParams)

			require.NoError(t, err)
			assert.Equal(t, models.RoleAdmin, user.Role)
		})
	})

	t.Run("create duplicate email fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), params)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "should return well known error")
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.Error(t, err, "Should return error for non-existent user")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), params)
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), "alice@example.com")

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "bob@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}

func Test_CartRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create cart ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)
			user, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{Email: "alice@example.com", PasswordHash: "hash"})
			require.NoError(t, err)

			cart, err := storage.Cart().CreateCart(t.Context(), user.ID)

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, cart.ID)
			require.Equal(t, user.ID, cart.UserID)
		})
	})

	t.Run("second cart for user fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)
			user, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{Email: "alice@example.com", PasswordHash: "hash"})
			require.NoError(t, err)
			_, err = storage.Cart().CreateCart(t.Context(), user.ID)
			require.NoError(t, err)

			_, err = storage.Cart().CreateCart(t.Context(), user.ID)

			require.Error(t, err, "user may have only one cart")
		})
	})
}
