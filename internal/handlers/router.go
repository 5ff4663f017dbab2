package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/backoffice/internal/handlers/middleware"
	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/metrics"
	"github.com/nkiryanov/backoffice/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Everything router needs from auth service, see auth.AuthService
type sessionService interface {
	authService
	Authenticate(ctx context.Context, access string) (models.PublicUser, error)
	ValidateSession(ctx context.Context, userID uuid.UUID) (models.PublicUser, error)
}

type RouterConfig struct {
	Sessions sessionService

	// Database to check readiness
	DB pinger

	// Optional. If not set metrics are not collected and /metrics not served
	Metrics *metrics.Metrics

	Logger logger.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	withAuth := middleware.Auth(cfg.Sessions)
	staffOnly := func(h http.Handler) http.Handler {
		return chain(h, withAuth, middleware.RequireRole(models.RoleAdmin, models.RoleStaff))
	}

	authHandler := NewAuth(cfg.Sessions, l)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.register)
	mux.HandleFunc("POST /api/auth/login", authHandler.login)
	mux.HandleFunc("POST /api/auth/refresh-token", authHandler.refresh)
	mux.Handle("POST /api/auth/logout", withAuth(http.HandlerFunc(authHandler.logout)))
	mux.Handle("POST /api/auth/logout-all", withAuth(http.HandlerFunc(authHandler.logoutAll)))
	mux.Handle("GET /api/auth/me", withAuth(handleUserMe()))

	mux.Handle("GET /api/users/{id}", staffOnly(handleGetUser(cfg.Sessions, l)))

	mux.Handle("GET /healthz", handleHealthz())
	mux.Handle("GET /readyz", handleReadyz(cfg.DB, l))

	mds := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.LoggerMiddleware(l),
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
		mds = append(mds, middleware.Metrics(cfg.Metrics))
	}

	return chain(mux, mds...)
}
