// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/providers"
)

// FilterGenres handles GET /api/v1/filters/genres.
func (h *Handler) FilterGenres(w http.ResponseWriter, r *http.Request) {
	h.serveFilterList(w, r, "genres", h.suggestions.FetchGenres)
}

// FilterPlatforms handles GET /api/v1/filters/platforms.
func (h *Handler) FilterPlatforms(w http.ResponseWriter, r *http.Request) {
	h.serveFilterList(w, r, "platforms", h.suggestions.FetchPlatforms)
}

// FilterTags handles GET /api/v1/filters/tags.
func (h *Handler) FilterTags(w http.ResponseWriter, r *http.Request) {
	h.serveFilterList(w, r, "tags", h.suggestions.FetchTags)
}

// serveFilterList fetches one reference list. Results come from the
// catalog client's memo cache on repeat calls within the TTL.
func (h *Handler) serveFilterList(w http.ResponseWriter, r *http.Request, name string,
	fetch func(context.Context) ([]providers.FilterItem, error)) {
	rw := NewResponseWriter(w, r)

	if !h.suggestions.Configured() {
		rw.NotConfigured("Game catalog is not configured")
		return
	}

	items, err := fetch(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("list", name).Msg("Reference list fetch failed")
		rw.Error(http.StatusBadGateway, ErrCodeSearchFailed, "Could not load "+name)
		return
	}

	rw.Success(items)
}
