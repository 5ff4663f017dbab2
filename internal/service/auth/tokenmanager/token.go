package tokenmanager

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/apperrors"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/repository"
)

const (
	defaultSigningMethod = "HS256"
	defaultAccessTTL     = "15m"
	defaultRefreshTTL    = "7d"

	// Refresh token entropy: 256 bits
	refreshTokenBytes = 32
)

type AccessClaims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  models.Role `json:"role"`

	// Parsed from the subject claim, not encoded
	UserID uuid.UUID `json:"-"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes, like "15m" or "7d"
	// If not set than default is used. Unparsable values mean 7 days (see ParseDuration)
	AccessTTL  string
	RefreshTTL string

	// Current time source, time.Now if not set
	Clock func() time.Time
}

type TokenManager struct {
	// Secret key to sign access token
	key []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration

	clock func() time.Time

	// Refresh tokens are saved here
	storage repository.Storage
}

func New(cfg Config, storage repository.Storage) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, only HMAC ones are", cfg.Alg)
	}

	if cfg.AccessTTL == "" {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL == "" {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &TokenManager{
		key:        []byte(cfg.SecretKey),
		alg:        alg,
		accessTTL:  ParseDuration(cfg.AccessTTL),
		refreshTTL: ParseDuration(cfg.RefreshTTL),
		clock:      cfg.Clock,
		storage:    storage,
	}, nil
}

// WithStorage returns manager with the same settings that saves tokens to the storage
// Use it to issue tokens inside transaction
func (m *TokenManager) WithStorage(storage repository.Storage) *TokenManager {
	clone := *m
	clone.storage = storage
	return &clone
}

func (m *TokenManager) IssueAccessToken(userID uuid.UUID, email string, role models.Role) (models.IssuedToken, error) {
	now := m.clock().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(m.alg, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
		Role:  role,
	})

	access, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// IssueRefreshToken generates opaque random token and saves it
func (m *TokenManager) IssueRefreshToken(ctx context.Context, userID uuid.UUID) (models.IssuedToken, error) {
	now := m.clock().Truncate(time.Second)

	b := make([]byte, refreshTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while generate refresh token. Err: %w", err)
	}

	token, err := m.storage.Refresh().Create(ctx, models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     base64.RawURLEncoding.EncodeToString(b),
		CreatedAt: now,
		ExpiresAt: now.Add(m.refreshTTL),
	})
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

func (m *TokenManager) IssuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, err := m.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and validate access token
// Every failure is apperrors.ErrInvalidAccessToken
func (m *TokenManager) ParseAccess(access string) (AccessClaims, error) {
	claims := AccessClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		&claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidAccessToken, err)
	}

	claims.UserID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("%w: bad subject: %w", apperrors.ErrInvalidAccessToken, err)
	}

	return claims, nil
}

// Now returns current time of the manager clock
func (m *TokenManager) Now() time.Time {
	return m.clock()
}
