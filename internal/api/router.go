package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/psicoasis/oasis-backend/internal/content"
	"github.com/psicoasis/oasis-backend/internal/identity"
	redisclient "github.com/psicoasis/oasis-backend/internal/redis"
	"github.com/psicoasis/oasis-backend/internal/stats"
)

type RouterConfig struct {
	Identity *identity.Service
	Content  *content.Service
	Stats    *stats.Service
	Limiter  *redisclient.RateLimiter
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	if cfg.Limiter != nil {
		r.Use(RateLimitMiddleware(cfg.Limiter))
	}

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		// Registration and identity resolution
		r.Post("/auth/register", registerHandler(cfg.Identity))
		r.Get("/accounts", findAccountHandler(cfg.Identity))
		r.Get("/accounts/{id}", getAccountHandler(cfg.Identity))

		// Public therapist directory
		r.Get("/therapists/public", listPublicTherapistsHandler(cfg.Identity))

		// Admin account management
		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", listAccountsHandler(cfg.Identity))
			r.Patch("/users/{id}", updateAccountHandler(cfg.Identity))
			r.Delete("/users/{id}", deleteAccountHandler(cfg.Identity))
			r.Post("/users/reset", resetAccountsHandler(cfg.Identity))

			r.Post("/therapists/{id}/approve", setApprovalHandler(cfg.Identity, true))
			r.Delete("/therapists/{id}/approve", setApprovalHandler(cfg.Identity, false))
			r.Post("/therapists/{id}/authorize-blog", setBlogAuthorizationHandler(cfg.Identity, true))
			r.Delete("/therapists/{id}/authorize-blog", setBlogAuthorizationHandler(cfg.Identity, false))
		})

		// Blog
		r.Route("/blog", func(r chi.Router) {
			r.Get("/posts", listPublishedPostsHandler(cfg.Content))
			r.Post("/posts", createPostHandler(cfg.Identity, cfg.Content))
			r.Get("/admin/posts", listAllPostsHandler(cfg.Identity, cfg.Content))
			r.Get("/posts/{idOrSlug}", getPostHandler(cfg.Identity, cfg.Content))
			r.Put("/posts/{idOrSlug}", updatePostHandler(cfg.Identity, cfg.Content))
			r.Delete("/posts/{idOrSlug}", deletePostHandler(cfg.Identity, cfg.Content))
		})

		// Dashboard stats
		r.Get("/stats/admin", adminStatsHandler(cfg.Identity, cfg.Stats))
		r.Get("/stats/patients/{id}", patientStatsHandler(cfg.Stats))
		r.Get("/stats/therapists/{id}", therapistStatsHandler(cfg.Stats))
	})

	return r
}
