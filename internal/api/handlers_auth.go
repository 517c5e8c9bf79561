// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/logging"
)

// steamCallbackPath is where Steam redirects after authenticating the user.
const steamCallbackPath = "/api/v1/auth/steam/callback"

// AuthSteamLogin handles GET /api/v1/auth/steam: redirect the browser to
// the Steam OpenID provider.
func (h *Handler) AuthSteamLogin(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Configured() {
		NewResponseWriter(w, r).NotConfigured("Steam login is not configured")
		return
	}

	http.Redirect(w, r, h.openID.LoginURL(steamCallbackPath), http.StatusFound)
}

// AuthSteamCallback handles the OpenID return redirect: re-verify the
// assertion with Steam, mint the session cookie, and send the browser back
// to the app.
func (h *Handler) AuthSteamCallback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, err := h.openID.VerifyCallback(r.Context(), r.URL.Query())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidAssertion) {
			rw.Unauthorized("Steam did not confirm the login")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Steam OpenID callback failed")
		rw.Error(http.StatusBadGateway, ErrCodeInternalError, "Steam login failed")
		return
	}

	cookie, err := h.sessions.IssueCookie(*user)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			rw.NotConfigured("Steam login is not configured")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Session cookie issuance failed")
		rw.InternalError("Could not establish session")
		return
	}

	logging.Ctx(r.Context()).Info().Str("steam_id", user.SteamID).Str("username", user.Username).Msg("User logged in via Steam")

	http.SetCookie(w, cookie)
	http.Redirect(w, r, h.publicURL+"/?loggedIn=1", http.StatusFound)
}

// AuthLogout handles POST /api/v1/auth/logout: expire the session cookie.
// Logout of an anonymous caller succeeds; the operation is idempotent.
func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.ClearCookie())
	WriteRawJSON(w, r, map[string]bool{"success": true})
}

// AuthMe handles GET /api/v1/auth/me. It returns the bare user object for
// identified callers and JSON null for everyone else with 200: the SPA
// polls this on load and an anonymous visitor is not an error. The one
// exception is a cookie presented while the session secret is unset —
// that is a deployment fault and must not masquerade as anonymity, so the
// session is read here rather than trusting the middleware's lenient pass.
func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.ReadUser(r)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			NewResponseWriter(w, r).NotConfigured("Session secret is not configured")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Session read failed")
		NewResponseWriter(w, r).InternalError("Could not read session")
		return
	}
	if user == nil {
		WriteRawJSON(w, r, nil)
		return
	}
	WriteRawJSON(w, r, user)
}
