// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/gamecurator/internal/config"
)

// ChiMiddleware builds the Chi ecosystem middleware (CORS, rate limiting)
// from service configuration.
type ChiMiddleware struct {
	cors              func(http.Handler) http.Handler
	rateLimitReqs     int
	rateLimitWindow   time.Duration
	rateLimitDisabled bool
}

// NewChiMiddleware creates the middleware factory. CORS origins come from
// configuration; an empty list means no cross-origin access, which is the
// safe default for same-origin deployments behind the SPA.
func NewChiMiddleware(cfg *config.SecurityConfig) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		cors:              corsHandler,
		rateLimitReqs:     cfg.RateLimitReqs,
		rateLimitWindow:   cfg.RateLimitWindow,
		rateLimitDisabled: cfg.RateLimitDisabled,
	}
}

// CORS returns the go-chi/cors handler. Must be installed globally so
// OPTIONS preflight requests are answered on every route.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitConfig defines rate limit parameters for a route group.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Route-group rate limit tiers. Recommendation runs are expensive (an AI
// call plus a paced enrichment walk), so they get the tightest budget;
// media proxying is high volume and gets the loosest.
var (
	// RateLimitRecommend bounds full recommendation pipeline runs.
	RateLimitRecommend = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitAuth bounds login flow requests (brute force prevention).
	RateLimitAuth = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitMedia is permissive for image and video proxying; a single
	// detail page fans out into many screenshot fetches.
	RateLimitMedia = RateLimitConfig{Requests: 600, Window: time.Minute}

	// RateLimitHealth allows frequent monitoring probes.
	RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// RateLimit returns the default IP-keyed rate limiter from configuration.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(RateLimitConfig{Requests: m.rateLimitReqs, Window: m.rateLimitWindow})
}

// RateLimitCustom returns an IP-keyed rate limiter for one route group.
func (m *ChiMiddleware) RateLimitCustom(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return m.limit(cfg)
}

func (m *ChiMiddleware) limit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if m.rateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.LimitByIP(cfg.Requests, cfg.Window)
}

// SecurityHeaders adds defensive headers to API responses. CSP is omitted
// since these endpoints serve JSON, not HTML.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
