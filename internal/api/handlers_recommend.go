// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/providers"
	"github.com/tomtom215/gamecurator/internal/validation"
)

// maxRequestBodySize bounds recommendation request bodies. Quiz answers are
// tiny; anything near this limit is abuse.
const maxRequestBodySize = 64 * 1024

// Recommend handles POST /api/v1/recommendations. It validates the quiz
// answers, runs the pipeline (or serves the cached result for identified
// users), and returns the enriched recommendation set.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var answers models.QuizAnswers
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		rw.BadRequest("Request body must be valid JSON quiz answers")
		return
	}

	if verr := validation.ValidateStruct(answers); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	userID := ""
	if user := auth.UserFromContext(r.Context()); user != nil {
		userID = user.SteamID
	}

	start := time.Now()
	result, err := h.engine.Recommend(r.Context(), userID, answers)
	if err != nil {
		if errors.Is(err, providers.ErrMissingGeminiKey) {
			rw.NotConfigured("Recommendation service is not configured")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation pipeline failed")
		rw.Error(http.StatusBadGateway, ErrCodeRecommendationFailed, "Could not generate recommendations")
		return
	}

	meta := models.Metadata{Cached: result.Cached}
	if !result.Cached {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	rw.SuccessWithMeta(result.Response, meta)
}
