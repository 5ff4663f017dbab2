package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/backoffice/internal/models"
)

type CartRepo struct {
	DB DBTX
}

const createCart = `-- name: CreateCart
INSERT INTO carts (id, user_id)
VALUES ($1, $2)
RETURNING id, user_id, created_at
`

func (r *CartRepo) CreateCart(ctx context.Context, userID uuid.UUID) (models.Cart, error) {
	rows, _ := r.DB.Query(ctx, createCart, uuid.New(), userID)
	cart, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Cart, error) {
		var c models.Cart
		err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return cart, fmt.Errorf("db error: %w", err)
	}

	return cart, nil
}
