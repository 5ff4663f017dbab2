package models

import (
	"time"

	"github.com/google/uuid"
)

// Persisted refresh token. Single use: the row is deleted once it is consumed
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is not valid at the given moment
func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
