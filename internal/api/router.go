package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/achrafidrissi/urc/internal/api/middleware"
	"github.com/achrafidrissi/urc/internal/handlers"
	"github.com/achrafidrissi/urc/internal/store"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil
// in development; the rate limiter then passes everything through.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, sessions store.ChatStore, redisClient *redis.Client) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting for the public surface, keyed by client IP. The
	// per-principal limiter mounts inside the authenticated group below.
	publicLimiter := middleware.NewPublicRateLimiter(redisClient, logger)
	r.Use(publicLimiter.Middleware)

	// CORS - the web client may be served from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	auth := middleware.NewAuthMiddleware(sessions)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	// Authenticated routes (require a resolved principal)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		// After RequireAuth, so limits key on the principal.
		limiter := middleware.NewPrincipalRateLimiter(redisClient, logger)
		r.Use(limiter.Middleware)

		r.Get("/users", h.ListUsers)

		r.Post("/message", h.SendDirectMessage)
		r.Get("/messages", h.GetDirectMessages)

		r.Get("/rooms", h.ListRooms)
		r.Post("/rooms", h.CreateRoom)
		r.Get("/rooms/{id}/messages", h.GetRoomMessages)
		r.Post("/rooms/{id}/messages", h.PostRoomMessage)
	})

	return r
}
