// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/providers"
	"github.com/tomtom215/gamecurator/internal/recommend"
)

func postRecommendations(router http.Handler, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecommend_Success(t *testing.T) {
	deps := defaultTestDeps()
	deps.engine.result = &recommend.Result{
		Response: models.RecommendationResponse{
			Recommendations: []models.EnrichedRecommendation{
				{ID: "1", SteamAppID: "620", Title: "Portal 2"},
			},
			Accuracy: models.QuizAccuracy{Percentage: 92},
		},
	}
	router := newTestRouter(t, deps)

	rec := postRecommendations(router, validAnswersJSON(), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Status != "success" {
		t.Errorf("Status = %q", envelope.Status)
	}
	if envelope.Metadata.Cached {
		t.Error("Cached = true for a fresh pipeline run")
	}
	if deps.engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", deps.engine.calls)
	}
	if deps.engine.gotUserID != "" {
		t.Errorf("userID = %q, want empty for anonymous caller", deps.engine.gotUserID)
	}
	if len(deps.engine.gotAnswers.PreferredGenres) != 2 {
		t.Errorf("answers genres = %v", deps.engine.gotAnswers.PreferredGenres)
	}
}

func TestRecommend_IdentifiedCallerPassesSteamID(t *testing.T) {
	deps := defaultTestDeps()
	router := newTestRouter(t, deps)

	rec := postRecommendations(router, validAnswersJSON(), sessionCookie(t, deps))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if deps.engine.gotUserID != "76561198012345678" {
		t.Errorf("userID = %q, want the session Steam ID", deps.engine.gotUserID)
	}
}

func TestRecommend_CachedResultFlagged(t *testing.T) {
	deps := defaultTestDeps()
	deps.engine.result = &recommend.Result{
		Response: models.RecommendationResponse{Recommendations: []models.EnrichedRecommendation{}},
		Cached:   true,
	}
	router := newTestRouter(t, deps)

	rec := postRecommendations(router, validAnswersJSON(), sessionCookie(t, deps))

	envelope := decodeEnvelope(t, rec)
	if !envelope.Metadata.Cached {
		t.Error("Metadata.Cached = false, want true for cache hit")
	}
}

func TestRecommend_MalformedBody(t *testing.T) {
	router := newTestRouter(t, defaultTestDeps())

	rec := postRecommendations(router, "{not json", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeBadRequest {
		t.Errorf("error = %+v, want code %s", envelope.Error, ErrCodeBadRequest)
	}
}

func TestRecommend_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing genres", `{"playstyle":"casual","timeAvailability":"short","difficultyPreference":"easy"}`},
		{"empty genres", `{"preferredGenres":[],"playstyle":"casual","timeAvailability":"short","difficultyPreference":"easy"}`},
		{"bad playstyle", `{"preferredGenres":["RPG"],"playstyle":"extreme","timeAvailability":"short","difficultyPreference":"easy"}`},
		{"bad difficulty", `{"preferredGenres":["RPG"],"playstyle":"casual","timeAvailability":"short","difficultyPreference":"impossible"}`},
	}

	deps := defaultTestDeps()
	router := newTestRouter(t, deps)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRecommendations(router, tt.body, nil)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			envelope := decodeEnvelope(t, rec)
			if envelope.Error == nil || envelope.Error.Code != ErrCodeValidationFailed {
				t.Errorf("error = %+v, want code %s", envelope.Error, ErrCodeValidationFailed)
			}
		})
	}

	if deps.engine.calls != 0 {
		t.Errorf("engine calls = %d, validation failures must not reach the pipeline", deps.engine.calls)
	}
}

func TestRecommend_MissingProviderKey(t *testing.T) {
	deps := defaultTestDeps()
	deps.engine.err = providers.ErrMissingGeminiKey
	router := newTestRouter(t, deps)

	rec := postRecommendations(router, validAnswersJSON(), nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotConfigured {
		t.Errorf("error = %+v, want code %s", envelope.Error, ErrCodeNotConfigured)
	}
}

func TestRecommend_PipelineFailure(t *testing.T) {
	deps := defaultTestDeps()
	deps.engine.err = errors.New("upstream exploded")
	router := newTestRouter(t, deps)

	rec := postRecommendations(router, validAnswersJSON(), nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeRecommendationFailed {
		t.Errorf("error = %+v, want code %s", envelope.Error, ErrCodeRecommendationFailed)
	}
}
