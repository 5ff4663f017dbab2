package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/backoffice/internal/apperrors"
	"github.com/nkiryanov/backoffice/internal/handlers/render"
	"github.com/nkiryanov/backoffice/internal/logger"
)

// Service error to response status code and message
var errorResponses = []struct {
	err     error
	code    int
	message string
}{
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{apperrors.ErrRefreshTokenExpired, http.StatusUnauthorized, "Refresh token expired"},
	{apperrors.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid refresh token"},
	{apperrors.ErrInvalidAccessToken, http.StatusUnauthorized, "Unauthorized"},
	{apperrors.ErrEmailInUse, http.StatusConflict, "Email already in use"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, "User not found"},
}

// Render service error, unknown errors are logged and hidden from the client
func renderError(w http.ResponseWriter, l logger.Logger, err error) {
	for _, resp := range errorResponses {
		if errors.Is(err, resp.err) {
			render.ServiceError(w, resp.message, resp.code)
			return
		}
	}

	l.Error("request failed", "error", err)
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
