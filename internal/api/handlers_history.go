// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"
	"strconv"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History handles GET /api/v1/history: the caller's past recommendation
// runs, newest first. The optional limit parameter is clamped to
// [1, maxHistoryLimit].
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, ok := h.requireUser(rw, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			rw.BadRequest("Parameter 'limit' must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := h.store.ListHistory(r.Context(), user.SteamID, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(entries)
}
