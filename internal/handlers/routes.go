package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Voting API (public)
	r.Get("/api/polls/{pollID}", h.handleGetPoll)
	r.Get("/api/polls/{pollID}/ballot", h.handleGetBallotStatus)
	r.Post("/api/polls/{pollID}/vote", h.handleSubmitVote)
	r.Get("/api/polls/{pollID}/results", h.handleGetResults)
	r.Get("/api/polls/{pollID}/qr", h.handleShareQR)

	// Live results rooms
	r.Get("/ws/polls/{pollID}", h.handleObserve)

	// Auth routes (public)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Post("/api/admin/polls", h.handleCreatePoll)
		r.Get("/api/admin/polls", h.handleListPolls)
		r.Get("/api/admin/polls/{pollID}/stats", h.handleGetPollStats)
	})

	return r
}
