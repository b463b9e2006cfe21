package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abrezinsky/outletplay/internal/auth"
	"github.com/abrezinsky/outletplay/internal/models"
)

const requestTimeout = 60 * time.Second

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.log != nil && h.log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

func (h *Handlers) corsOptions() cors.Options {
	origins := h.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(cors.Handler(h.corsOptions()))

	// Long-lived live streams (public, no request timeout)
	r.Get("/api/game/live", h.handleLive)
	if h.WebSocket != nil {
		r.Get("/ws", h.WebSocket.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/health", h.handleHealth)
		r.Handle("/metrics", promhttp.Handler())

		// Game API (any authenticated user)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireUser)

			r.Get("/api/game/status", h.handleGameStatus)
			r.Post("/api/game/play", h.handlePlay)
			r.Get("/api/game/rewards", h.handleRewards)
			r.Get("/api/game/rewards/{id}/qr", h.handleRewardQR)
		})

		// Admin API
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireUser)
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/api/admin/prizes", h.handleGetPrizes)
			r.Post("/api/admin/prizes", h.handleCreatePrize)
			r.Post("/api/admin/prizes/seed", h.handleSeedPrizes)
			r.Put("/api/admin/prizes/{id}", h.handleUpdatePrize)
			r.Get("/api/admin/game/summary", h.handleDailySummary)
		})
	})

	return r
}
