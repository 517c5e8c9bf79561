// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/providers"
)

// minSuggestionQueryLength avoids firing three catalog sub-queries for a
// single keystroke.
const minSuggestionQueryLength = 2

// SearchSuggestions handles GET /api/v1/search/suggestions. Each caller
// has at most one suggestion query in flight; a newer query cancels the
// older one so stale results never race ahead of fresh ones.
func (h *Handler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < minSuggestionQueryLength {
		rw.BadRequest("Query parameter 'q' must be at least 2 characters")
		return
	}

	if !h.suggestions.Configured() {
		rw.NotConfigured("Game catalog search is not configured")
		return
	}

	ctx, done := h.searchReg.Begin(r.Context(), h.callerKey(r))
	defer done()

	suggestions, err := h.suggestions.FetchSuggestions(ctx, query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Superseded by a newer query from the same caller.
			logging.Ctx(r.Context()).Debug().Str("query", query).Msg("Suggestion query superseded")
			rw.Error(http.StatusConflict, ErrCodeSearchFailed, "Query superseded by a newer request")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("query", query).Msg("Suggestion search failed")
		rw.Error(http.StatusBadGateway, ErrCodeSearchFailed, "Game catalog search failed")
		return
	}

	rw.Success(suggestions)
}

// SearchGame handles GET /api/v1/search/game: resolve one free-text title
// to a full candidate via the AI provider.
func (h *Handler) SearchGame(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		rw.BadRequest("Query parameter 'q' is required")
		return
	}

	candidate, err := h.searcher.SearchGame(r.Context(), query)
	if err != nil {
		if errors.Is(err, providers.ErrMissingGeminiKey) {
			rw.NotConfigured("Game search is not configured")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("query", query).Msg("Game search failed")
		rw.Error(http.StatusBadGateway, ErrCodeSearchFailed, "Game search failed")
		return
	}

	rw.Success(candidate)
}

// callerKey identifies the caller for query cancellation: the Steam ID for
// identified users, the remote IP otherwise.
func (h *Handler) callerKey(r *http.Request) string {
	if user := auth.UserFromContext(r.Context()); user != nil {
		return "user:" + user.SteamID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
