package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/handlers/render"
	"github.com/nkiryanov/backoffice/internal/handlers/userctx"
	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/models"
	"github.com/nkiryanov/backoffice/internal/service/auth"
)

type authService interface {
	// Has to return apperrors.ErrEmailInUse if email is taken
	Register(ctx context.Context, params auth.RegisterParams) (models.Session, error)

	// Has to return apperrors.ErrInvalidCredentials if email or password is wrong
	Login(ctx context.Context, email string, password string) (models.Session, error)

	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found or used: has to return apperrors.ErrInvalidRefreshToken
	Refresh(ctx context.Context, refresh string) (models.Session, error)

	Logout(ctx context.Context, userID uuid.UUID, refresh string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type sessionResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

func newSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{
		User:         s.User,
		AccessToken:  s.Tokens.Access.Value,
		RefreshToken: s.Tokens.Refresh.Value,
	}
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,notblank"`
}

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(s authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{authService: s, logger: l}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=255"`
		Password  string `json:"password" validate:"required,min=8,max=72"`
		FirstName string `json:"firstName" validate:"max=100"`
		LastName  string `json:"lastName" validate:"max=100"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	session, err := h.authService.Register(r.Context(), auth.RegisterParams{
		Email:     data.Email,
		Password:  data.Password,
		FirstName: data.FirstName,
		LastName:  data.LastName,
	})
	if err != nil {
		renderError(w, h.logger, err)
		return
	}

	render.JSONWithStatus(w, newSessionResponse(session), http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	session, err := h.authService.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		renderError(w, h.logger, err)
		return
	}

	render.JSON(w, newSessionResponse(session))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[refreshRequest](w, r)
	if err != nil {
		return
	}

	session, err := h.authService.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		renderError(w, h.logger, err)
		return
	}

	render.JSON(w, newSessionResponse(session))
}

// Requires authenticated user
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	user, _ := userctx.FromContext(r.Context())

	data, err := render.BindAndValidate[refreshRequest](w, r)
	if err != nil {
		return
	}

	err = h.authService.Logout(r.Context(), user.ID, data.RefreshToken)
	if err != nil {
		renderError(w, h.logger, err)
		return
	}

	render.JSON(w, successResponse{Success: true, Message: "Logged out successfully"})
}

// Requires authenticated user
func (h *AuthHandler) logoutAll(w http.ResponseWriter, r *http.Request) {
	user, _ := userctx.FromContext(r.Context())

	err := h.authService.LogoutAll(r.Context(), user.ID)
	if err != nil {
		renderError(w, h.logger, err)
		return
	}

	render.JSON(w, successResponse{Success: true, Message: "Logged out from all devices successfully"})
}
