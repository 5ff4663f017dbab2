package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/repository/postgres"
	"github.com/nkiryanov/backoffice/internal/testutil"
)

func Test_run(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)
	testutil.Truncate(pg.Pool, t, "users")

	noenv := func(string) string { return "" }

	t.Run("seed twice", func(t *testing.T) {
		for range 2 {
			err := run(t.Context(), logger.NewNoOpLogger(), noenv, []string{"--database", pg.DSN})
			require.NoError(t, err, "seeding is idempotent")
		}

		repo := postgres.NewStorage(pg.Pool).User()
		for email, role := range map[string]models.Role{
			"admin@example.com":    models.RoleAdmin,
			"staff@example.com":    models.RoleStaff,
			"customer@example.com": models.RoleCustomer,
		} {
			u, err := repo.GetUserByEmail(t.Context(), email)
			require.NoError(t, err)
			require.Equal(t, role, u.Role)
		}
	})

	t.Run("database from env", func(t *testing.T) {
		getenv := func(key string) string {
			if key == "DATABASE_URI" {
				return pg.DSN
			}
			return ""
		}

		require.NoError(t, run(t.Context(), logger.NewNoOpLogger(), getenv, nil))
	})

	t.Run("no database", func(t *testing.T) {
		require.Error(t, run(t.Context(), logger.NewNoOpLogger(), noenv, nil))
	})
}
