// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/validation"
)

// requireUser resolves the session identity or writes a 401. Favorites and
// history are meaningless without one.
func (h *Handler) requireUser(rw *ResponseWriter, r *http.Request) (*models.User, bool) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		rw.Unauthorized("Sign in with Steam to use this feature")
		return nil, false
	}
	if h.store == nil {
		rw.NotConfigured("Persistent storage is not available")
		return nil, false
	}
	return user, true
}

// ListFavorites handles GET /api/v1/favorites, newest first.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, ok := h.requireUser(rw, r)
	if !ok {
		return
	}

	favorites, err := h.store.ListFavorites(r.Context(), user.SteamID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(favorites)
}

// AddFavorite handles POST /api/v1/favorites. Adding an already-favorited
// game overwrites the stored snapshot; the operation is idempotent.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, ok := h.requireUser(rw, r)
	if !ok {
		return
	}

	var favorite models.Favorite
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&favorite); err != nil {
		rw.BadRequest("Request body must be a valid favorite")
		return
	}

	// Identity comes from the session, never from the body.
	favorite.UserID = user.SteamID
	favorite.CreatedAt = time.Now().UTC()

	if verr := validation.ValidateStruct(favorite); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if err := h.store.AddFavorite(r.Context(), favorite); err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(favorite)
}

// RemoveFavorite handles DELETE /api/v1/favorites/{source}/{gameID}.
// Removing an absent favorite succeeds.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, ok := h.requireUser(rw, r)
	if !ok {
		return
	}

	source := models.GameSource(chi.URLParam(r, "source"))
	if source != models.SourceSteam && source != models.SourceRawg {
		rw.BadRequest("Source must be 'steam' or 'rawg'")
		return
	}
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		rw.BadRequest("Game ID is required")
		return
	}

	if err := h.store.RemoveFavorite(r.Context(), user.SteamID, source, gameID); err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]bool{"removed": true})
}
