// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chirp-social/chirp/internal/auth"
	"github.com/chirp-social/chirp/internal/config"
	"github.com/chirp-social/chirp/internal/middleware"
)

// NewRouter wires the full route table: public feed/profile reads,
// the registration endpoint, and the authenticated write surface
// behind the auth gate.
func NewRouter(handler *Handler, gate *auth.Middleware, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.PrometheusMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/user", handler.RegisterUser)
			r.With(gate.RequireUser).Get("/me", handler.Me)
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Get("/", handler.ListTweets)
			r.Get("/user/{username}", handler.UserTweets)

			r.Group(func(r chi.Router) {
				r.Use(gate.RequireUser)
				r.Post("/", handler.CreateTweet)
				r.Post("/{id}/like", handler.LikeTweet)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{username}", handler.Profile)

			r.Group(func(r chi.Router) {
				r.Use(gate.RequireUser)
				r.Put("/profile", handler.UpdateProfile)
				r.Put("/profile-picture", handler.ProfilePicture)
				r.Post("/follow/{userId}", handler.Follow)
				r.Delete("/follow/{userId}", handler.Unfollow)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
