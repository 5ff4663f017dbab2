package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/backoffice/internal/db"
	"github.com/nkiryanov/backoffice/internal/handlers/render"
	"github.com/nkiryanov/backoffice/internal/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status"`
}

// Process is alive
func handleHealthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, healthResponse{Status: "ok"})
	})
}

// Process is able to serve requests: database is reachable
func handleReadyz(p pinger, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := db.Ping(r.Context(), p, readinessTimeout)
		if err != nil {
			l.Warn("readiness check failed", "error", err)
			render.JSONWithStatus(w, healthResponse{Status: "unavailable"}, http.StatusServiceUnavailable)
			return
		}

		render.JSON(w, healthResponse{Status: "ok"})
	})
}
