package handlers

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelichko/contactkeeper/internal/handlers/middleware"
	"github.com/avelichko/contactkeeper/internal/logger"
)

// Users endpoints allow one request per 20 seconds per client
const (
	userRateLimitTimes  = 1
	userRateLimitWindow = 20 * time.Second
)

type RouterConfig struct {
	Auth     *AuthHandler
	Contacts *ContactHandler
	Users    *UserHandler
	Birthday *BirthdayHandler
	Tracking *TrackingHandler
	Health   *HealthHandler

	Resolver userResolver
	Redis    redis.UniversalClient
	Logger   logger.Logger
}

type userResolver = middleware.UserResolver

// NewRouter assembles the public HTTP surface
func NewRouter(cfg RouterConfig) http.Handler {
	withAuth := middleware.AuthMiddleware(cfg.Resolver)
	withRate := middleware.RateLimit(cfg.Redis, userRateLimitTimes, userRateLimitWindow)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", http.StripPrefix("/api/auth", cfg.Auth.Handler(withAuth)))
	mux.Handle("/api/contacts/", http.StripPrefix("/api/contacts", withAuth(cfg.Contacts.Handler())))
	mux.Handle("/api/users/", http.StripPrefix("/api/users", chain(cfg.Users.Handler(), withAuth, withRate)))
	mux.Handle("/api/birthdays/", http.StripPrefix("/api/birthdays", cfg.Birthday.Handler()))
	mux.Handle("/api/mail_tracking/", http.StripPrefix("/api/mail_tracking", cfg.Tracking.Handler()))
	mux.HandleFunc("GET /healthchecker", cfg.Health.healthcheck)

	return chain(mux, middleware.LoggerMiddleware(cfg.Logger), middleware.CORS(), middleware.UserAgentBan())
}

// chain wraps the handler so the first middleware runs outermost
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
