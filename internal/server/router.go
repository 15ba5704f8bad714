package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contractiq/contractiq/internal/api"
	"github.com/contractiq/contractiq/internal/api/handlers"
	"github.com/contractiq/contractiq/internal/api/middleware"
	"github.com/contractiq/contractiq/internal/metrics"
)

type RouterConfig struct {
	TokenValidator  middleware.TokenValidator
	UserResolver    middleware.UserResolver
	AuthHandler     *handlers.AuthHandler
	ContractHandler *handlers.ContractHandler
	AskHandler      *handlers.AskHandler
	RateLimiter     *middleware.IPRateLimiter
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 32 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/signup", cfg.AuthHandler.Signup)
	r.Post("/login", cfg.AuthHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.TokenValidator, cfg.UserResolver))

		r.Post("/upload", cfg.ContractHandler.Upload)
		r.Get("/contracts", cfg.ContractHandler.List)
		r.Get("/contracts/{id}", cfg.ContractHandler.Get)
		r.Post("/ask", cfg.AskHandler.Ask)
	})

	return r
}
