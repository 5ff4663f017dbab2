package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/backoffice/internal/apperrors"
	"github.com/nkiryanov/backoffice/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const createToken = `-- name: Create Refresh Token
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, token, created_at, expires_at
`

func (r *RefreshTokenRepo) Create(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createToken, token.ID, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt)
	created, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const findByToken = `-- name: FindByToken exact match on token value
SELECT id, user_id, token, created_at, expires_at
FROM refresh_tokens
WHERE token = $1
`

// Find token
// It returns the row even if it expired already
func (r *RefreshTokenRepo) FindByToken(ctx context.Context, token string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, findByToken, token)
	found, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return found, nil
	case errors.Is(err, pgx.ErrNoRows):
		return found, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return found, fmt.Errorf("db error: %w", err)
	}
}

const deleteToken = `-- name: Delete token by id
DELETE FROM refresh_tokens
WHERE id = $1
`

// Delete token
// Single statement: concurrent deletes of the same row are serialized by postgres row lock
// and only one of them sees affected row
func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, deleteToken, tokenID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

const deleteByUserAndToken = `-- name: Delete token owned by user
DELETE FROM refresh_tokens
WHERE user_id = $1 AND token = $2
`

func (r *RefreshTokenRepo) DeleteByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteByUserAndToken, userID, token)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const deleteAllForUser = `-- name: Delete all user tokens
DELETE FROM refresh_tokens
WHERE user_id = $1
`

func (r *RefreshTokenRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteAllForUser, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const deleteExpired = `-- name: Delete batch of expired tokens
DELETE FROM refresh_tokens
WHERE id IN (
	SELECT id FROM refresh_tokens
	WHERE expires_at < $1
	ORDER BY expires_at
	LIMIT $2
	FOR UPDATE SKIP LOCKED
)
`

// Delete expired tokens in batch
// Rows locked by concurrent refresh are skipped; they will be deleted by the refresh itself or next sweep
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time, limit int) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpired, before, limit)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}
