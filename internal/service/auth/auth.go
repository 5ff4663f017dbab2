package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/apperrors"
	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/metrics"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/repository"
	"github.com/nkiryanov/backoffice/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/backoffice/internal/service/user"
)

// Auth events
const (
	EventRegister     = "register"
	EventLogin        = "login"
	EventRefresh      = "refresh"
	EventLogout       = "logout"
	EventLogoutAll    = "logout_all"
	EventAuthenticate = "authenticate"
)

// Errors caused by the client, not by the service itself
var clientErrors = []error{
	apperrors.ErrInvalidCredentials,
	apperrors.ErrEmailInUse,
	apperrors.ErrInvalidRefreshToken,
	apperrors.ErrRefreshTokenExpired,
	apperrors.ErrInvalidAccessToken,
	apperrors.ErrUserNotFound,
}

// Counts auth events, e.g. *metrics.Metrics
type EventRecorder interface {
	AuthEvent(event string, outcome string)
}

type Config struct {
	// No-op logger if not set
	Logger logger.Logger

	// Events are not recorded if not set
	Events EventRecorder
}

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Auth service
// Issues, rotates and revokes user sessions
type AuthService struct {
	// Manager to issue token pairs (access and refresh)
	tokens *tokenmanager.TokenManager

	// Users lookup, creation and password check
	users *user.UserService

	// Refresh tokens are rotated in storage transaction
	storage repository.Storage

	logger logger.Logger
	events EventRecorder
}

func NewService(cfg Config, storage repository.Storage, tokens *tokenmanager.TokenManager, users *user.UserService) (*AuthService, error) {
	if storage == nil || tokens == nil || users == nil {
		return nil, errors.New("storage, token manager and user service must not be nil")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &AuthService{
		tokens:  tokens,
		users:   users,
		storage: storage,
		logger:  cfg.Logger.WithGroup("auth"),
		events:  cfg.Events,
	}, nil
}

// Register customer and start session for him
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (session models.Session, err error) {
	defer func() { s.record(EventRegister, err) }()

	u, err := s.users.CreateUser(ctx, user.CreateUserParams{
		Email:     params.Email,
		Password:  params.Password,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Role:      models.RoleCustomer,
	})
	if err != nil {
		return session, err
	}

	return s.startSession(ctx, s.tokens, u)
}

// Login with email and password
// Wrong password and unknown email are both apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (session models.Session, err error) {
	defer func() { s.record(EventLogin, err) }()

	u, err := s.users.CheckCredentials(ctx, email, password)
	if err != nil {
		return session, err
	}

	return s.startSession(ctx, s.tokens, u)
}

// Rotate refresh token: presented token is removed and new pair issued
// Only one of concurrent calls with the same token succeeds
func (s *AuthService) Refresh(ctx context.Context, refresh string) (session models.Session, err error) {
	defer func() { s.record(EventRefresh, err) }()

	token, err := s.storage.Refresh().FindByToken(ctx, refresh)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		return session, apperrors.ErrInvalidRefreshToken
	case err != nil:
		return session, fmt.Errorf("can't get refresh token. Err: %w", err)
	}

	if token.Expired(s.tokens.Now()) {
		_, err = s.storage.Refresh().Delete(ctx, token.ID)
		if err != nil {
			return session, fmt.Errorf("can't delete expired refresh token. Err: %w", err)
		}
		return session, apperrors.ErrRefreshTokenExpired
	}

	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		deleted, err := tx.Refresh().Delete(ctx, token.ID)
		if err != nil {
			return fmt.Errorf("can't delete refresh token. Err: %w", err)
		}
		if !deleted {
			// Rotated concurrently
			return apperrors.ErrInvalidRefreshToken
		}

		u, err := tx.User().GetUserByID(ctx, token.UserID)
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			// Rollback keeps the row, but user deletion cascades to its tokens
			return apperrors.ErrInvalidRefreshToken
		case err != nil:
			return fmt.Errorf("can't get user. Err: %w", err)
		}

		session, err = s.startSession(ctx, s.tokens.WithStorage(tx), u)
		return err
	})
	if err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// Revoke one refresh token of the user
// Unknown or other user token is not an error
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refresh string) (err error) {
	defer func() { s.record(EventLogout, err) }()

	_, err = s.storage.Refresh().DeleteByUserAndToken(ctx, userID, refresh)
	if err != nil {
		return fmt.Errorf("can't delete refresh token. Err: %w", err)
	}

	return nil
}

// Revoke all refresh tokens of the user
// Issued access tokens remain valid until expired
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) (err error) {
	defer func() { s.record(EventLogoutAll, err) }()

	n, err := s.storage.Refresh().DeleteAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("can't delete refresh tokens. Err: %w", err)
	}

	s.logger.Debug("user sessions revoked", "user_id", userID, "count", n)
	return nil
}

// ValidateSession returns user the session belongs to
func (s *AuthService) ValidateSession(ctx context.Context, userID uuid.UUID) (models.PublicUser, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}

	return u.Public(), nil
}

// Authenticate access token and return user it was issued for
func (s *AuthService) Authenticate(ctx context.Context, access string) (u models.PublicUser, err error) {
	defer func() { s.record(EventAuthenticate, err) }()

	claims, err := s.tokens.ParseAccess(access)
	if err != nil {
		return u, err
	}

	u, err = s.ValidateSession(ctx, claims.UserID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return u, fmt.Errorf("%w: %w", apperrors.ErrInvalidAccessToken, err)
	}

	return u, err
}

func (s *AuthService) startSession(ctx context.Context, tokens *tokenmanager.TokenManager, u models.User) (models.Session, error) {
	pair, err := tokens.IssuePair(ctx, u)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	return models.Session{User: u.Public(), Tokens: pair}, nil
}

func (s *AuthService) record(event string, err error) {
	outcome := metrics.OutcomeSuccess

	switch {
	case err == nil:
	case isClientError(err):
		outcome = metrics.OutcomeFailure
		s.logger.Debug("auth failed", "event", event, "error", err)
	default:
		outcome = metrics.OutcomeError
		s.logger.Error("auth error", "event", event, "error", err)
	}

	if s.events != nil {
		s.events.AuthEvent(event, outcome)
	}
}

func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
