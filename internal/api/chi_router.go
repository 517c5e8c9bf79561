// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/middleware"
)

// Router assembles the HTTP handler tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	sessions      *auth.SessionManager
}

// NewRouter creates a router from the handler set and middleware factory.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, sessions *auth.SessionManager) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		sessions:      sessions,
	}
}

// chiRoutePattern resolves the matched route pattern for metrics labels.
// Patterns like /api/v1/media/{appID} keep label cardinality bounded no
// matter how many distinct app IDs pass through.
func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight always answers
	r.Use(auth.SessionMiddleware(router.sessions))

	// Health endpoints: permissive rate limit for monitoring probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Authentication endpoints: strict rate limit against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitAuth))
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Get("/steam", router.handler.AuthSteamLogin)
		r.Get("/steam/callback", router.handler.AuthSteamCallback)
		r.Post("/logout", router.handler.AuthLogout)
		r.Get("/me", router.handler.AuthMe)
	})

	// Recommendation pipeline: tightest budget, each run is expensive.
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitRecommend))
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Post("/", router.handler.Recommend)
	})

	// Search and reference lists.
	r.Route("/api/v1/search", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Get("/suggestions", router.handler.SearchSuggestions)
		r.Get("/game", router.handler.SearchGame)
	})

	r.Route("/api/v1/filters", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Get("/genres", router.handler.FilterGenres)
		r.Get("/platforms", router.handler.FilterPlatforms)
		r.Get("/tags", router.handler.FilterTags)
	})

	// Media metadata and proxies: loose rate limit, detail pages fan out.
	r.Route("/api/v1/media", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitMedia))
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Get("/image", router.handler.ImageProxy)
		r.Get("/video", router.handler.VideoProxy)
		r.Get("/{appID}", router.handler.AppMedia)
	})

	// Identity-backed endpoints.
	r.Route("/api/v1/favorites", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Get("/", router.handler.ListFavorites)
		r.Post("/", router.handler.AddFavorite)
		r.Delete("/{source}/{gameID}", router.handler.RemoveFavorite)
	})

	r.Route("/api/v1/history", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics(chiRoutePattern))

		r.Get("/", router.handler.History)
	})

	// Prometheus scrape endpoint, outside the API envelope.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
