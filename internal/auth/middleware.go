// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package auth

import (
	"context"
	"net/http"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/models"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// SessionMiddleware resolves the session cookie once per request and
// attaches the user (or nil for anonymous callers) to the request context.
// A misconfigured secret is logged but does not block the request; the
// caller proceeds anonymously and endpoints that require identity fail
// with their own configuration error.
func SessionMiddleware(m *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := m.ReadUser(r)
			if err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("Session resolution unavailable")
			}
			if user != nil {
				r = r.WithContext(ContextWithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithUser attaches an authenticated user to ctx.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}
