// Seed database with admin, staff and customer accounts
// Existing accounts are kept as is
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nkiryanov/backoffice/internal/db"
	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/repository/postgres"
	"github.com/nkiryanov/backoffice/internal/service/user"
)

var seedUsers = []user.CreateUserParams{
	{Email: "admin@example.com", Password: "Admin123!", FirstName: "Admin", LastName: "User", Role: models.RoleAdmin},
	{Email: "staff@example.com", Password: "Staff123!", FirstName: "Staff", LastName: "User", Role: models.RoleStaff},
	{Email: "customer@example.com", Password: "Customer123!", FirstName: "Customer", LastName: "User", Role: models.RoleCustomer},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	l, err := logger.NewTextLogger(logger.LevelInfo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(ctx, l, os.Getenv, os.Args[1:]); err != nil {
		l.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, l logger.Logger, getenv func(string) string, args []string) error {
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	dsn := fs.StringP("database", "d", getenv("DATABASE_URI"), "Database connection string")

	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if *dsn == "" {
		return fmt.Errorf("database is required: set DATABASE_URI or --database")
	}

	pool, err := db.ConnectAndMigrate(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	defer pool.Close()

	users := user.NewService(user.DefaultHasher, postgres.NewStorage(pool))

	for _, params := range seedUsers {
		u, created, err := users.EnsureUser(ctx, params)
		if err != nil {
			return fmt.Errorf("can't seed %s: %w", params.Email, err)
		}
		l.Info("user seeded", "email", u.Email, "role", u.Role, "created", created)
	}

	return nil
}
