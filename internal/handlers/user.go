package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/handlers/render"
	"github.com/nkiryanov/backoffice/internal/handlers/userctx"
	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/models"
)

type userService interface {
	// Has to return apperrors.ErrUserNotFound if user not exists
	ValidateSession(ctx context.Context, userID uuid.UUID) (models.PublicUser, error)
}

// Current authenticated user
func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, user)
	})
}

func handleGetUser(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		user, err := s.ValidateSession(r.Context(), userID)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, user)
	})
}
