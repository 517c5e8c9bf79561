// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package auth implements Steam OpenID login and cookie-based sessions.
// Sessions are stateless HS256 JWTs carried in an HttpOnly cookie; the
// signing secret is the only server-side state, so a restart never logs
// anybody out.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/models"
)

// ErrMissingSecret is returned when a session operation runs without a
// configured SESSION_SECRET. This is a deployment configuration error, not
// an authentication failure.
var ErrMissingSecret = errors.New("auth: session secret is not configured")

// sessionClaims is the JWT payload for one logged-in user.
type sessionClaims struct {
	SteamID   string `json:"steamId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates session cookies.
//
// Thread Safety: safe for concurrent use; all fields are immutable after
// construction.
type SessionManager struct {
	secret     []byte
	cookieName string
	timeout    time.Duration
	secure     bool
}

// NewSessionManager creates a session manager from security configuration.
// A missing secret is not an error here; it surfaces as ErrMissingSecret at
// first use so the condition is attributable to the endpoint that needs it.
func NewSessionManager(cfg *config.SecurityConfig) *SessionManager {
	return &SessionManager{
		secret:     []byte(cfg.SessionSecret),
		cookieName: cfg.SessionCookie,
		timeout:    cfg.SessionTimeout,
		secure:     cfg.CookieSecure,
	}
}

// Configured reports whether a signing secret is present.
func (m *SessionManager) Configured() bool {
	return len(m.secret) > 0
}

// CookieName returns the session cookie name.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// IssueCookie signs a session token for user and wraps it in an HttpOnly
// cookie.
func (m *SessionManager) IssueCookie(user models.User) (*http.Cookie, error) {
	if !m.Configured() {
		return nil, ErrMissingSecret
	}

	now := time.Now()
	claims := sessionClaims{
		SteamID:   user.SteamID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.SteamID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to sign session token: %w", err)
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.timeout.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie returns the expired cookie that ends a session.
func (m *SessionManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ReadUser resolves the caller identity from the request's session cookie.
// An absent, malformed, expired, or forged cookie yields (nil, nil): the
// caller is simply anonymous. Only a missing secret is an error.
func (m *SessionManager) ReadUser(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	if !m.Configured() {
		return nil, ErrMissingSecret
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.SteamID == "" {
		return nil, nil
	}

	return &models.User{
		SteamID:   claims.SteamID,
		Username:  claims.Username,
		AvatarURL: claims.AvatarURL,
	}, nil
}
